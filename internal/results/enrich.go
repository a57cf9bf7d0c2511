// internal/results/enrich.go
package results

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
)

// Enricher resolves the weaknesses referenced by a set of findings.
type Enricher struct {
	cweProvider CWEProvider
	logger      *zap.Logger
}

// NewEnricher creates a new Enricher instance. A nil provider disables enrichment.
func NewEnricher(cweProvider CWEProvider, logger *zap.Logger) *Enricher {
	return &Enricher{
		cweProvider: cweProvider,
		logger:      logger.Named("enricher"),
	}
}

// Weaknesses looks up every distinct CWE of findings once. Findings without
// a CWE are ignored.
func (e *Enricher) Weaknesses(ctx context.Context, findings []schemas.Finding) (map[string]string, error) {
	weaknesses := make(map[string]string)
	if e.cweProvider == nil {
		return weaknesses, nil
	}

	seen := make(map[int]bool)
	for _, f := range findings {
		if f.CWE <= 0 || seen[f.CWE] {
			continue
		}
		seen[f.CWE] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cweID := fmt.Sprintf("CWE-%d", f.CWE)
		name, ok := e.cweProvider.GetFullName(ctx, cweID)
		if !ok {
			e.logger.Debug("CWE not found in catalog", zap.String("cwe_id", cweID))
			continue
		}
		weaknesses[cweID] = name
	}
	return weaknesses, nil
}
