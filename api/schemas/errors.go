package schemas

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when an input file does not carry an
// extension the selected parser accepts. No content is read in that case.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrEncoding is returned when the input bytes are not valid UTF-8.
var ErrEncoding = errors.New("input is not valid UTF-8")

// DateParseError reports an alert timestamp that could not be parsed.
// Row is the 1-based data row number, not counting the header.
type DateParseError struct {
	Value string
	Row   int
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse date %q: %v", e.Row, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }
