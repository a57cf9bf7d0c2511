package results

import (
	"context"

	"github.com/xkilldash9x/scanimport/api/schemas"
)

// CWEProvider resolves CWE identifiers such as "CWE-1032" to their names.
type CWEProvider interface {
	GetFullName(ctx context.Context, cweID string) (string, bool)
}

// Summary aggregates the findings of a report.
type Summary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
}

// Report is the processed view of the findings stored for one test.
type Report struct {
	Test     *schemas.Test
	Findings []schemas.Finding
	Summary  Summary
	// Weaknesses maps each CWE referenced by the findings to its name.
	// CWEs the provider does not know are left out.
	Weaknesses map[string]string
}
