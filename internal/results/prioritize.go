package results

import (
	"sort"

	"github.com/xkilldash9x/scanimport/api/schemas"
)

// severityOrder ranks the canonical severities, most severe first.
var severityOrder = map[schemas.Severity]int{
	schemas.SeverityCritical: 1,
	schemas.SeverityHigh:     2,
	schemas.SeverityMedium:   3,
	schemas.SeverityLow:      4,
	schemas.SeverityInfo:     5,
}

func severityRank(s schemas.Severity) int {
	if rank, ok := severityOrder[s]; ok {
		return rank
	}
	return 99
}

// Prioritize sorts findings in place, most severe first. Severities outside
// the canonical set sort last. Findings of equal severity keep their order.
func Prioritize(findings []schemas.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return severityRank(findings[i].Severity) < severityRank(findings[j].Severity)
	})
}

// Summarize counts findings by severity.
func Summarize(findings []schemas.Finding) Summary {
	summary := Summary{
		Total:      len(findings),
		BySeverity: make(map[string]int),
	}
	for _, f := range findings {
		summary.BySeverity[string(f.Severity)]++
	}
	return summary
}
