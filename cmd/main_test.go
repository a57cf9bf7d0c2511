// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/scanimport/internal/config"
	"github.com/xkilldash9x/scanimport/internal/observability"
)

// resetForTest provides the single source of truth for resetting test state.
func resetForTest(t *testing.T) {
	t.Helper()

	viper.Reset()

	// A fatal-level logger keeps test output quiet. Later InitializeLogger
	// calls from PersistentPreRunE are no-ops.
	observability.ResetForTest()
	observability.InitializeLogger(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"})
}

// newPristineRootCmd returns a fresh command tree wired to provider.
func newPristineRootCmd(provider storeProvider) *cobra.Command {
	return newRootCmd(provider)
}

// executeCommand runs the root command with args and returns everything it
// printed through cobra's writers.
func executeCommand(t *testing.T, provider storeProvider, args ...string) (string, error) {
	t.Helper()
	resetForTest(t)

	rootCmd := newPristineRootCmd(provider)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// probeConfig runs a throwaway subcommand through PersistentPreRunE and
// returns the configuration it loaded.
func probeConfig(t *testing.T, args ...string) (config.Interface, error) {
	t.Helper()
	resetForTest(t)

	var captured config.Interface
	rootCmd := newPristineRootCmd(&mockStoreProvider{})
	rootCmd.AddCommand(&cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			captured = cfg
			return err
		},
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "probe"))

	err := rootCmd.ExecuteContext(context.Background())
	return captured, err
}
