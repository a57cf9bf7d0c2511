// internal/reporting/sarif_reporter.go
package reporting

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/observability"
	"github.com/xkilldash9x/scanimport/internal/reporting/sarif"
)

// Constants for tool identification in the reports.
const (
	ToolName     = "scanimport"
	ToolInfoURI  = "https://github.com/xkilldash9x/scanimport"
	SARIFVersion = "2.1.0"
	SARIFSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	rulePrefix   = "SCANIMPORT-"
)

// ruleIDSanitizer replaces characters not allowed in rule IDs. Alphanumerics,
// underscore and dot survive; every other run collapses into one hyphen.
var ruleIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_.]+`)

// RuleFingerprint identifies a rule definition by its content.
type RuleFingerprint string

// ruleName is the policy part of a finding title. Imported titles have the
// form "<policy> - <resource>"; shortened titles are used as they are.
func ruleName(finding schemas.Finding) string {
	if finding.ComponentName != "" {
		if name, ok := strings.CutSuffix(finding.Title, " - "+finding.ComponentName); ok {
			return name
		}
	}
	return strings.TrimSuffix(finding.Title, " -")
}

func cweTag(cwe int) string {
	if cwe <= 0 {
		return ""
	}
	return "CWE-" + strconv.Itoa(cwe)
}

// calculateFingerprint hashes the characteristics shared by every finding of
// one rule. Resource specific text (title suffix, description) is left out.
func calculateFingerprint(finding schemas.Finding) RuleFingerprint {
	data := struct {
		Name       string
		Mitigation string
		CWE        int
	}{
		Name:       ruleName(finding),
		Mitigation: finding.MitigationText(),
		CWE:        finding.CWE,
	}

	h := sha1.New()
	_ = json.NewEncoder(h).Encode(data)
	return RuleFingerprint(hex.EncodeToString(h.Sum(nil)))
}

// SARIFReporter implements the Reporter interface for the SARIF 2.1.0 format.
// It is thread safe.
type SARIFReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	log    *sarif.Log
	// mu protects the log structure and the maps.
	mu                 sync.Mutex
	rulesByFingerprint map[RuleFingerprint]string
	// ruleIDUsage counts how often a base rule ID was handed out.
	ruleIDUsage map[string]int
}

// NewSARIFReporter creates a new reporter that writes SARIF output.
func NewSARIFReporter(writer io.WriteCloser, toolVersion string) *SARIFReporter {
	logger := observability.GetLogger().Named("sarif_reporter")
	log := &sarif.Log{
		Version: SARIFVersion,
		Schema:  SARIFSchema,
		Runs: []*sarif.Run{
			{
				Tool: &sarif.Tool{
					Driver: &sarif.ToolComponent{
						Name:           ToolName,
						Version:        pString(toolVersion),
						InformationURI: pString(ToolInfoURI),
						// Empty slices, not nil, so the JSON carries [].
						Rules: []*sarif.ReportingDescriptor{},
					},
				},
				Results: []*sarif.Result{},
			},
		},
	}

	return &SARIFReporter{
		writer:             writer,
		logger:             logger,
		log:                log,
		rulesByFingerprint: make(map[RuleFingerprint]string),
		ruleIDUsage:        make(map[string]int),
	}
}

// Write converts a ResultEnvelope into SARIF results and adds them to the log.
func (r *SARIFReporter) Write(result *schemas.ResultEnvelope) error {
	if result == nil {
		return nil
	}
	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	for _, finding := range result.Findings {
		ruleID := r.ensureRule(finding)

		messageText := finding.Description
		if messageText == "" {
			messageText = finding.Title
		}

		props := sarif.PropertyBag{
			"severity": string(finding.Severity),
			"date":     finding.Date.Format("2006-01-02"),
		}
		if finding.Test != nil {
			props["test_id"] = finding.Test.ID
			props["scan_type"] = finding.Test.ScanType
		}

		sarifResult := &sarif.Result{
			RuleID:     ruleID,
			Message:    &sarif.Message{Text: pString(messageText)},
			Level:      mapSeverityToSARIFLevel(finding.Severity),
			Locations:  r.createLocations(finding),
			Properties: &props,
		}
		if finding.UniqueIDFromTool != "" {
			sarifResult.PartialFingerprints = map[string]string{"uniqueIdFromTool/v1": finding.UniqueIDFromTool}
		}
		run.Results = append(run.Results, sarifResult)
	}

	if len(result.Findings) > 0 {
		r.logger.Debug("Wrote findings to SARIF buffer",
			zap.Int("findings_count", len(result.Findings)),
			zap.Duration("duration_ms", time.Since(startTime)),
		)
	}
	return nil
}

// Close finalizes the SARIF log and writes it to the output writer.
func (r *SARIFReporter) Close() error {
	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	r.logger.Info("Finalizing SARIF report",
		zap.Int("total_results", len(run.Results)),
		zap.Int("total_rules", len(run.Tool.Driver.Rules)),
	)

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")

	encodeErr := encoder.Encode(r.log)
	// Always attempt to close the writer, regardless of encoding success.
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode SARIF log to JSON", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode SARIF output: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}

	r.logger.Info("Successfully wrote SARIF report",
		zap.Duration("duration_ms", time.Since(startTime)),
	)
	return nil
}

// sanitizeRuleName creates a standardized base name for the rule ID.
func sanitizeRuleName(name string) string {
	if name == "" {
		return "UNNAMED-POLICY"
	}

	sanitized := strings.ToUpper(name)
	sanitized = ruleIDSanitizer.ReplaceAllString(sanitized, "-")
	sanitized = strings.Trim(sanitized, "-")

	if sanitized == "" {
		return "UNKNOWN-POLICY"
	}
	return sanitized
}

// ensureRule returns the ID of the rule describing finding, registering a new
// rule on first sight. Must be called while holding the mutex.
func (r *SARIFReporter) ensureRule(finding schemas.Finding) string {
	fingerprint := calculateFingerprint(finding)
	if ruleID, exists := r.rulesByFingerprint[fingerprint]; exists {
		return ruleID
	}

	name := ruleName(finding)
	baseRuleID := rulePrefix + sanitizeRuleName(name)

	usageCount := r.ruleIDUsage[baseRuleID]
	r.ruleIDUsage[baseRuleID] = usageCount + 1

	finalRuleID := baseRuleID
	if usageCount > 0 {
		finalRuleID = fmt.Sprintf("%s-%d", baseRuleID, usageCount)
		r.logger.Debug("Rule ID collision detected, generated new ID with suffix",
			zap.String("base_id", baseRuleID),
			zap.String("final_id", finalRuleID),
		)
	}

	r.logger.Debug("Registering new SARIF rule definition", zap.String("rule_id", finalRuleID))

	mitigation := finding.MitigationText()
	markdownHelp := fmt.Sprintf("**Policy:** %s\n\n**Mitigation:**\n%s", name, mitigation)

	props := sarif.PropertyBag{
		"tags":      []string{"security", "cloud-configuration"},
		"precision": "high",
	}
	if tag := cweTag(finding.CWE); tag != "" {
		props["cwe"] = tag
	}

	newRule := &sarif.ReportingDescriptor{
		ID:               finalRuleID,
		Name:             pString(name),
		ShortDescription: &sarif.MultiformatMessageString{Text: pString(name)},
		FullDescription:  &sarif.MultiformatMessageString{Text: pString(finding.Title)},
		Help: &sarif.MultiformatMessageString{
			Text:     pString(mitigation),
			Markdown: pString(markdownHelp),
		},
		Properties: &props,
	}
	driver := r.log.Runs[0].Tool.Driver
	driver.Rules = append(driver.Rules, newRule)
	r.rulesByFingerprint[fingerprint] = finalRuleID
	return finalRuleID
}

// createLocations points the result at the affected cloud resource.
func (r *SARIFReporter) createLocations(finding schemas.Finding) []*sarif.Location {
	if finding.ComponentName == "" {
		return nil
	}
	location := &sarif.Location{
		PhysicalLocation: &sarif.PhysicalLocation{
			ArtifactLocation: &sarif.ArtifactLocation{
				URI: pString(finding.ComponentName),
			},
		},
		Message: &sarif.Message{
			Text: pString("Affected resource " + finding.ComponentName),
		},
	}
	return []*sarif.Location{location}
}

// mapSeverityToSARIFLevel converts a finding severity to a SARIF level.
func mapSeverityToSARIFLevel(severity schemas.Severity) sarif.Level {
	switch strings.ToLower(string(severity)) {
	case "critical", "high":
		return sarif.LevelError
	case "medium":
		return sarif.LevelWarning
	default:
		return sarif.LevelNote
	}
}

// pString returns a pointer to the given string value. Helper for optional SARIF fields.
func pString(s string) *string {
	return &s
}
