package loader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is wrapped by LoadError for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// LoadError reports an I/O or parse failure reading a source.
type LoadError struct {
	Source string
	Op     string // read | parse | query
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SheetNotFoundError reports a missing sheet (or SQLite table).
type SheetNotFoundError struct {
	Source    string
	Sheet     string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("load %s: sheet %q not found (available: %s)",
		e.Source, e.Sheet, strings.Join(e.Available, ", "))
}

// ColumnMissingError reports required columns absent from the header row.
type ColumnMissingError struct {
	Source   string
	Required []string
	Found    []string
	Missing  []string
}

func (e *ColumnMissingError) Error() string {
	return fmt.Sprintf("load %s: missing columns [%s]; found [%s]",
		e.Source, strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}
