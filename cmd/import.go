// File: cmd/import.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/config"
	"github.com/xkilldash9x/scanimport/internal/observability"
	"github.com/xkilldash9x/scanimport/internal/parsers"
	"github.com/xkilldash9x/scanimport/internal/results"
)

// importOptions describes the destination test of an import.
type importOptions struct {
	testID       string
	testTitle    string
	engagementID string
	persist      bool
}

// newImportCmd creates and configures the `import` command.
func newImportCmd(provider storeProvider) *cobra.Command {
	var opts importOptions
	var scanType, format, outputPath string
	var lenientDates bool

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Convert a tool export into findings",
		Long: `Parses the given export with the parser registered for the scan type and
writes one finding per open alert as a JSON or SARIF report. With --persist the
findings are also stored in PostgreSQL under the destination test.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("scan-type") {
				cfg.SetImporterScanType(scanType)
			}
			if cmd.Flags().Changed("lenient-dates") {
				cfg.SetImporterLenientDates(lenientDates)
			}
			applyReportFlags(cmd, cfg, format, outputPath)

			return runImport(ctx, logger, cfg, args[0], opts, provider)
		},
	}

	importCmd.Flags().StringVarP(&scanType, "scan-type", "t", "", "Scan type of the input (default: importer.default_scan_type)")
	importCmd.Flags().StringVar(&opts.testID, "test-id", "", "ID of the destination test (default: a new UUID)")
	importCmd.Flags().StringVar(&opts.testTitle, "test-title", "", "Title of the destination test (default: the file name)")
	importCmd.Flags().StringVar(&opts.engagementID, "engagement-id", "", "Engagement the destination test belongs to")
	importCmd.Flags().BoolVar(&lenientDates, "lenient-dates", false, "Skip alerts with an unparseable alert time instead of failing")
	importCmd.Flags().BoolVar(&opts.persist, "persist", false, "Store the findings in the database")
	importCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: report.output, stdout when empty)")
	importCmd.Flags().StringVarP(&format, "format", "f", "", "Report format: json or sarif (default: report.format)")

	return importCmd
}

// runImport contains the core, testable logic of the import command.
func runImport(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.Interface,
	path string,
	opts importOptions,
	provider storeProvider,
) error {
	importerCfg := cfg.Importer()

	registry, err := parsers.Default(logger, importerCfg)
	if err != nil {
		return fmt.Errorf("failed to build parser registry: %w", err)
	}
	parser, err := registry.Get(importerCfg.DefaultScanType)
	if err != nil {
		return err
	}

	path, err = homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand input path: %w", err)
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	test := newDestinationTest(importerCfg.DefaultScanType, path, opts)
	logger.Info("Starting import",
		zap.String("file", path),
		zap.String("scan_type", test.ScanType),
		zap.String("test_id", test.ID))

	findings, err := parser.GetFindings(file, test)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", filepath.Base(path), err)
	}
	summary := results.Summarize(findings)
	logger.Info("Imported findings",
		zap.String("test_id", test.ID),
		zap.Int("total", summary.Total),
		zap.Any("by_severity", summary.BySeverity))

	envelope := &schemas.ResultEnvelope{
		Test:       test,
		SourceFile: filepath.Base(path),
		Timestamp:  time.Now().UTC(),
		Findings:   findings,
	}

	if opts.persist {
		if err := persistEnvelope(ctx, cfg, provider, envelope); err != nil {
			return err
		}
	}

	return writeReport(logger, cfg.Report(), envelope)
}

func newDestinationTest(scanType, path string, opts importOptions) *schemas.Test {
	test := &schemas.Test{
		ID:           opts.testID,
		Title:        opts.testTitle,
		ScanType:     scanType,
		EngagementID: opts.engagementID,
	}
	if test.ID == "" {
		test.ID = uuid.NewString()
	}
	if test.Title == "" {
		test.Title = filepath.Base(path)
	}
	return test
}

func persistEnvelope(ctx context.Context, cfg config.Interface, provider storeProvider, envelope *schemas.ResultEnvelope) error {
	storeService, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := storeService.PersistData(ctx, envelope); err != nil {
		return fmt.Errorf("failed to persist findings: %w", err)
	}
	return nil
}
