package schemas

import (
	"time"
)

// -- Result Schemas --

// ResultEnvelope is the top level wrapper for the findings of a single import.
type ResultEnvelope struct {
	Test       *Test     `json:"test"`
	SourceFile string    `json:"source_file"`
	Timestamp  time.Time `json:"timestamp"`
	Findings   []Finding `json:"findings"`
}
