package reporting

import (
	"fmt"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReport is the document written by JSONReporter.
type JSONReport struct {
	Tool        string                    `json:"tool"`
	ToolVersion string                    `json:"tool_version"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Results     []*schemas.ResultEnvelope `json:"results"`
}

// JSONReporter buffers envelopes and writes them as one indented JSON
// document on Close. It is thread safe.
type JSONReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	mu     sync.Mutex
	report JSONReport
	now    func() time.Time
}

// NewJSONReporter creates a reporter that takes ownership of writer.
func NewJSONReporter(writer io.WriteCloser, toolVersion string) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		logger: observability.GetLogger().Named("json_reporter"),
		report: JSONReport{
			Tool:        ToolName,
			ToolVersion: toolVersion,
			Results:     []*schemas.ResultEnvelope{},
		},
		now: time.Now,
	}
}

// Write implements Reporter.
func (r *JSONReporter) Write(result *schemas.ResultEnvelope) error {
	if result == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.report.Results = append(r.report.Results, result)
	r.logger.Debug("Buffered result envelope", zap.Int("findings_count", len(result.Findings)))
	return nil
}

// Close encodes the buffered report and closes the writer.
func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.report.GeneratedAt = r.now().UTC()
	data, encodeErr := json.MarshalIndent(r.report, "", "  ")
	if encodeErr == nil {
		_, encodeErr = r.writer.Write(append(data, '\n'))
	}
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to write JSON report", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode JSON output: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}

	r.logger.Info("Successfully wrote JSON report", zap.Int("envelopes", len(r.report.Results)))
	return nil
}
