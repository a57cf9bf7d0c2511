// File: cmd/report.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/config"
	"github.com/xkilldash9x/scanimport/internal/observability"
	"github.com/xkilldash9x/scanimport/internal/reporting"
	"github.com/xkilldash9x/scanimport/internal/results"
	"github.com/xkilldash9x/scanimport/internal/store"
)

// storeProvider defines an interface for components that can create a data store
// (schemas.Store). This abstraction is crucial for testing, as it allows for
// the injection of a mock store instead of a live database connection.
type storeProvider interface {
	// Create initializes and returns a schemas.Store, a cleanup function to release
	// resources, and an error if the creation fails.
	Create(ctx context.Context, cfg config.Interface) (schemas.Store, func(), error)
}

// defaultStoreProvider is the concrete implementation of storeProvider used in
// production. It establishes a real connection to the PostgreSQL database.
type defaultStoreProvider struct{}

// NewStoreProvider is a factory function that creates a new defaultStoreProvider.
func NewStoreProvider() storeProvider {
	return &defaultStoreProvider{}
}

// Create connects to PostgreSQL, makes sure the schema exists and returns the
// store together with a cleanup function closing the pool.
func (p *defaultStoreProvider) Create(ctx context.Context, cfg config.Interface) (schemas.Store, func(), error) {
	logger := observability.GetLogger()
	if cfg.Database().URL == "" {
		return nil, nil, fmt.Errorf("database URL is not configured (SCANIMPORT_DATABASE_URL)")
	}

	pool, err := pgxpool.New(ctx, cfg.Database().URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storeService, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to initialize store service: %w", err)
	}
	if err := storeService.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		logger.Debug("Database connection pool closed.")
	}
	return storeService, cleanup, nil
}

// newReportCmd creates and configures the `report` command.
func newReportCmd(provider storeProvider) *cobra.Command {
	var testID string
	var outputPath string
	var format string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report from findings stored for a test",
		Long: `Loads the findings previously persisted for a test ID from the database and
writes them as a JSON or SARIF report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			applyReportFlags(cmd, cfg, format, outputPath)

			return runReport(ctx, logger, cfg, testID, provider)
		},
	}

	reportCmd.Flags().StringVar(&testID, "test-id", "", "The ID of the test to generate a report for (required)")
	_ = reportCmd.MarkFlagRequired("test-id")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: report.output, stdout when empty)")
	reportCmd.Flags().StringVarP(&format, "format", "f", "", "Report format: json or sarif (default: report.format)")

	return reportCmd
}

// applyReportFlags copies explicitly set report flags over the configuration.
func applyReportFlags(cmd *cobra.Command, cfg config.Interface, format, outputPath string) {
	if cmd.Flags().Changed("format") {
		cfg.SetReportFormat(format)
	}
	if cmd.Flags().Changed("output") {
		cfg.SetReportOutput(outputPath)
	}
}

// runReport contains the core, testable logic for generating a report.
func runReport(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.Interface,
	testID string,
	provider storeProvider,
) error {
	logger.Info("Starting report generation", zap.String("test_id", testID))

	storeService, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	// Mocks may not provide a cleanup.
	if cleanup != nil {
		defer cleanup()
	}

	report, err := results.NewPipeline(storeService, logger).Process(ctx, testID)
	if err != nil {
		logger.Error("Failed to load findings", zap.Error(err), zap.String("test_id", testID))
		return fmt.Errorf("failed to load findings for test %s: %w", testID, err)
	}
	logger.Info("Report summary",
		zap.String("test_id", testID),
		zap.Int("total", report.Summary.Total),
		zap.Any("by_severity", report.Summary.BySeverity),
		zap.Any("weaknesses", report.Weaknesses))

	envelope := &schemas.ResultEnvelope{
		Test:      report.Test,
		Timestamp: time.Now().UTC(),
		Findings:  report.Findings,
	}

	return writeReport(logger, cfg.Report(), envelope)
}

// newReporter is swapped out in tests.
var newReporter = reporting.New

// writeReport writes one envelope through the configured reporter.
func writeReport(logger *zap.Logger, reportCfg config.ReportConfig, envelope *schemas.ResultEnvelope) error {
	reporter, err := newReporter(reportCfg.Format, reportCfg.Output, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize reporter: %w", err)
	}

	if err := reporter.Write(envelope); err != nil {
		_ = reporter.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := reporter.Close(); err != nil {
		return fmt.Errorf("failed to finalize report: %w", err)
	}

	destination := reportCfg.Output
	if destination == "" {
		destination = "stdout"
	}
	logger.Info("Report written",
		zap.String("format", reportCfg.Format),
		zap.String("destination", destination),
		zap.Int("findings", len(envelope.Findings)))
	return nil
}
