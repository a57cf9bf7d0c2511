// File: cmd/scantypes_test.go
package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/scanimport/internal/parsers"
)

func TestRunScanTypes(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runScanTypes(&out, zap.NewNop(), newTestConfig(), "text"))

		assert.Contains(t, out.String(), "SCAN TYPE")
		assert.Contains(t, out.String(), "AWS Prisma CSV")
		assert.Contains(t, out.String(), "AWS Prisma CSV format.")
	})

	t.Run("YAML", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runScanTypes(&out, zap.NewNop(), newTestConfig(), "yaml"))

		var infos []parsers.ScanTypeInfo
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &infos))
		assert.Equal(t, []parsers.ScanTypeInfo{{
			Name:        "AWS Prisma CSV",
			Label:       "AWS Prisma CSV",
			Description: "AWS Prisma CSV format.",
		}}, infos)
	})

	t.Run("Unsupported format", func(t *testing.T) {
		var out bytes.Buffer
		err := runScanTypes(&out, zap.NewNop(), newTestConfig(), "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format: xml")
	})
}

func TestScanTypesCmd(t *testing.T) {
	out, err := executeCommand(t, &mockStoreProvider{}, "scan-types")
	require.NoError(t, err)
	assert.Contains(t, out, "AWS Prisma CSV")
}
