// File: cmd/helpers_test.go
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/config"
	"github.com/xkilldash9x/scanimport/internal/mocks"
)

const alertsHeader = "Alert ID,Alert Status,Policy Name,Policy Severity,Policy Labels,Resource ID,Cloud Account Name,Cloud Account Id,Region,Alert Time,Description,Recommendation\n"

// alertsCSV holds two open alerts and one resolved alert.
const alertsCSV = alertsHeader +
	`P-1,open,S3 bucket is publicly readable,high,"PCI, CIS",logs-bucket,prod,1111,us-east-1,"Mar 14, 2024 at 10:00 AM",Bucket allows public reads,Block public access` + "\n" +
	`P-2,resolved,Root account without MFA,critical,,root,prod,1111,global,"Mar 15, 2024 at 11:00 AM",Root has no MFA,Enable MFA` + "\n" +
	`P-3,open,Security group allows 0.0.0.0/0,medium,,sg-123,dev,2222,eu-west-1,"Apr 01, 2024 at 09:30 AM",Open ingress,Restrict ingress` + "\n"

// newTestConfig creates a default configuration for use in tests.
func newTestConfig() *config.Config {
	return config.NewDefaultConfig()
}

// writeFile writes content to name inside a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// mockStoreProvider hands out a preconfigured store and records cleanups.
type mockStoreProvider struct {
	store      *mocks.MockStore
	err        error
	created    int
	cleanedUp  int
	lastConfig config.Interface
}

func (p *mockStoreProvider) Create(ctx context.Context, cfg config.Interface) (schemas.Store, func(), error) {
	p.created++
	p.lastConfig = cfg
	if p.err != nil {
		return nil, nil, p.err
	}
	return p.store, func() { p.cleanedUp++ }, nil
}
