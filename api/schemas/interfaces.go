package schemas

import (
	"context"
	"io"
)

// NamedReader is a readable input stream that knows the name it was uploaded
// under. *os.File satisfies it.
type NamedReader interface {
	io.Reader
	Name() string
}

// Parser converts one scan export into findings for a destination test.
// Implementations describe the scan types they accept with static metadata.
type Parser interface {
	// ScanTypes lists the scan-type identifiers this parser handles.
	ScanTypes() []string
	// LabelForScanType returns a human readable label for a scan type.
	LabelForScanType(scanType string) string
	// DescriptionForScanType returns a short description of a scan type.
	DescriptionForScanType(scanType string) string
	// GetFindings reads the whole stream and returns the produced findings in
	// input order. On error no findings are returned.
	GetFindings(file NamedReader, test *Test) ([]Finding, error)
}

// Store defines a persistent storage system for imported findings. This
// abstraction keeps the CLI independent of the database implementation.
type Store interface {
	// PersistData saves all findings of an import in a single transaction.
	PersistData(ctx context.Context, data *ResultEnvelope) error
	// GetFindingsByTestID retrieves all findings associated with a test.
	GetFindingsByTestID(ctx context.Context, testID string) ([]Finding, error)
}
