package schemas

import (
	"time"
)

// -- Finding Schemas --

// Severity is the normalized severity label of a finding. The canonical values
// are capitalized to match what vulnerability-management platforms expect.
// Values outside the canonical set are allowed; parsers pass unknown source
// severities through rather than rejecting the row.
type Severity string

// Constants defining the canonical severity levels for findings.
const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

// IsKnown reports whether s is one of the canonical severity levels.
func (s Severity) IsKnown() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// CWEImproperSecurityConfiguration is the classification attached to every
// cloud-configuration alert (CWE-1032, OWASP Top Ten 2017 A6).
const CWEImproperSecurityConfiguration = 1032

// Test is the destination context an import belongs to. Parsers attach it to
// every finding they produce but never read or modify it.
type Test struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	ScanType     string `json:"scan_type" yaml:"scan_type"`
	EngagementID string `json:"engagement_id,omitempty" yaml:"engagement_id,omitempty"`
}

// Finding is the normalized record produced for a single accepted alert. It
// maps directly to the `findings` table written by the store.
type Finding struct {
	ID string `json:"id"` // Local identifier for the produced record.

	// Test is shared by every finding of one import. It is a non-owning
	// reference; the caller owns the Test and it outlives the import.
	Test *Test `json:"test,omitempty"`

	Title            string    `json:"title"`
	UniqueIDFromTool string    `json:"unique_id_from_tool"`
	ComponentName    string    `json:"component_name"`
	Severity         Severity  `json:"severity"`
	Date             time.Time `json:"date"`
	Description      string    `json:"description"`

	// Mitigation is nil when the source export carried no recommendation column.
	Mitigation *string `json:"mitigation"`

	StaticFinding  bool `json:"static_finding"`
	DynamicFinding bool `json:"dynamic_finding"`
	NbOccurences   int  `json:"nb_occurences"`
	CWE            int  `json:"cwe"`
}

// MitigationText returns the mitigation or an empty string when absent.
func (f Finding) MitigationText() string {
	if f.Mitigation == nil {
		return ""
	}
	return *f.Mitigation
}
