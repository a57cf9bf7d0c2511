// File: internal/results/pipeline.go
package results

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/results/providers"
)

// Pipeline turns the findings stored for a test into a Report.
type Pipeline struct {
	store    schemas.Store
	enricher *Enricher
	logger   *zap.Logger
}

// NewPipeline creates a pipeline backed by the built-in CWE catalog.
func NewPipeline(store schemas.Store, logger *zap.Logger) *Pipeline {
	return NewPipelineWithProvider(store, providers.NewInMemoryCWEProvider(), logger)
}

// NewPipelineWithProvider creates a pipeline that resolves CWEs through cweProvider.
func NewPipelineWithProvider(store schemas.Store, cweProvider CWEProvider, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:    store,
		enricher: NewEnricher(cweProvider, logger),
		logger:   logger.Named("results_pipeline"),
	}
}

// Process retrieves, enriches, prioritizes and summarizes the findings of a test.
func (p *Pipeline) Process(ctx context.Context, testID string) (*Report, error) {
	p.logger.Debug("Starting results processing", zap.String("test_id", testID))

	findings, err := p.store.GetFindingsByTestID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if findings == nil {
		findings = []schemas.Finding{}
	}
	p.logger.Debug("Retrieved stored findings", zap.Int("count", len(findings)))

	weaknesses, err := p.enricher.Weaknesses(ctx, findings)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich findings: %w", err)
	}

	Prioritize(findings)

	test := &schemas.Test{ID: testID}
	if len(findings) > 0 && findings[0].Test != nil {
		test = findings[0].Test
	}

	return &Report{
		Test:       test,
		Findings:   findings,
		Summary:    Summarize(findings),
		Weaknesses: weaknesses,
	}, nil
}
