// Package awsprisma converts Prisma Cloud alert exports ("AWS Prisma CSV")
// into normalized findings.
package awsprisma

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
)

// ScanType is the identifier this parser registers under.
const ScanType = "AWS Prisma CSV"

const (
	scanTypeDescription = "AWS Prisma CSV format."
	defaultTitleLength  = 150
	openStatus          = "open"
)

// Column names of the Prisma Cloud alert export.
const (
	colAlertStatus      = "Alert Status"
	colAlertID          = "Alert ID"
	colResourceID       = "Resource ID"
	colPolicyName       = "Policy Name"
	colCloudAccountID   = "Cloud Account Id"
	colCloudAccountName = "Cloud Account Name"
	colRegion           = "Region"
	colPolicySeverity   = "Policy Severity"
	colAlertTime        = "Alert Time"
	colRecommendation   = "Recommendation"
	colPolicyLabels     = "Policy Labels"
	colDescription      = "Description"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser implements schemas.Parser for Prisma Cloud CSV exports.
// A Parser holds no per-import state and is safe for concurrent use.
type Parser struct {
	logger         *zap.Logger
	lenientDates   bool
	titleMaxLength int
	now            func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for import summaries and skipped rows.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger.Named("aws_prisma")
		}
	}
}

// WithLenientDates makes rows with an unparseable alert time get skipped
// with a warning instead of failing the whole import.
func WithLenientDates(lenient bool) Option {
	return func(p *Parser) { p.lenientDates = lenient }
}

// WithTitleMaxLength overrides the title limit of 150 characters.
func WithTitleMaxLength(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.titleMaxLength = n
		}
	}
}

// WithClock replaces time.Now, which supplies the date of rows without an
// alert time.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		logger:         zap.NewNop(),
		titleMaxLength: defaultTitleLength,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ScanTypes implements schemas.Parser.
func (p *Parser) ScanTypes() []string {
	return []string{ScanType}
}

// LabelForScanType implements schemas.Parser.
func (p *Parser) LabelForScanType(string) string {
	return ScanType
}

// DescriptionForScanType implements schemas.Parser.
func (p *Parser) DescriptionForScanType(string) string {
	return scanTypeDescription
}

// GetFindings reads a Prisma alert export and returns one finding per open
// alert, in file order. The file name must end in ".csv"; anything else is
// rejected with schemas.ErrUnsupportedFormat before the stream is read.
//
// test is attached to every finding and is otherwise left alone.
func (p *Parser) GetFindings(file schemas.NamedReader, test *schemas.Test) ([]schemas.Finding, error) {
	if !strings.HasSuffix(strings.ToLower(file.Name()), ".csv") {
		return nil, fmt.Errorf("%w: %q (expected a .csv file)", schemas.ErrUnsupportedFormat, file.Name())
	}
	return p.processCSV(file, test)
}

func (p *Parser) processCSV(file io.Reader, test *schemas.Test) ([]schemas.Finding, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if offset := invalidUTF8Offset(content); offset >= 0 {
		return nil, fmt.Errorf("%w: invalid byte at offset %d", schemas.ErrEncoding, offset)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []schemas.Finding{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := indexColumns(header)

	findings := []schemas.Finding{}
	rowNum, skipped := 0, 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", rowNum+1, err)
		}
		rowNum++

		r := row{columns: columns, record: record}
		if status, _ := r.lookup(colAlertStatus); status != openStatus {
			p.logger.Debug("Skipping alert that is not open",
				zap.Int("row", rowNum),
				zap.String("status", status))
			skipped++
			continue
		}

		finding, err := p.buildFinding(r, test)
		if err != nil {
			var dateErr *schemas.DateParseError
			if p.lenientDates && errors.As(err, &dateErr) {
				dateErr.Row = rowNum
				p.logger.Warn("Skipping alert with unparseable alert time",
					zap.Int("row", rowNum),
					zap.String("value", dateErr.Value),
					zap.Error(dateErr.Err))
				skipped++
				continue
			}
			if errors.As(err, &dateErr) {
				dateErr.Row = rowNum
			}
			return nil, err
		}
		findings = append(findings, finding)
	}

	p.logger.Info("Parsed Prisma alert export",
		zap.Int("rows", rowNum),
		zap.Int("findings", len(findings)),
		zap.Int("skipped", skipped))
	return findings, nil
}

// buildFinding derives the finding for one open alert.
func (p *Parser) buildFinding(r row, test *schemas.Test) (schemas.Finding, error) {
	uniqueID, ok := r.lookup(colAlertID)
	if !ok {
		uniqueID = uuid.NewString()
	}
	componentName := r.get(colResourceID, "")
	title := r.get(colPolicyName, "") + " - " + componentName
	account := r.get(colCloudAccountName, "") + " - " + r.get(colCloudAccountID, "")
	region := r.get(colRegion, "")
	severity := MapSeverity(r.get(colPolicySeverity, string(schemas.SeverityInfo)))
	compliance := r.get(colPolicyLabels, "")

	now := p.now()
	rawDate := r.get(colAlertTime, now.Format("Jan 02, 2006"))
	date, err := parseAlertTime(rawDate, now)
	if err != nil {
		return schemas.Finding{}, err
	}

	var mitigation *string
	if rec, ok := r.lookup(colRecommendation); ok {
		mitigation = &rec
	}

	description := strings.Join([]string{
		"**Issue:** " + title,
		"**Description:** " + r.get(colDescription, ""),
		"**AWS Account:** " + account + " | **Region:** " + region,
		"**Compliance:** " + compliance,
	}, "\n")

	return schemas.Finding{
		ID:               uuid.NewString(),
		Test:             test,
		Title:            Shorten(title, p.titleMaxLength),
		UniqueIDFromTool: uniqueID,
		ComponentName:    componentName,
		Severity:         severity,
		Date:             date,
		Description:      description,
		Mitigation:       mitigation,
		StaticFinding:    true,
		DynamicFinding:   false,
		NbOccurences:     1,
		CWE:              schemas.CWEImproperSecurityConfiguration,
	}, nil
}

// invalidUTF8Offset returns the offset of the first byte that is not part of
// a valid UTF-8 sequence, or -1.
func invalidUTF8Offset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
