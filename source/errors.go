package source

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned for an unsupported format name.
	ErrUnknownFormat = errors.New("source: unknown format")
	// ErrColumnNotFound is returned when the selected column or field is missing.
	ErrColumnNotFound = errors.New("source: column not found")
)

// RecordError reports a malformed input record.
type RecordError struct {
	// Record is the zero-based record index.
	Record int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("source: record %d: %v", e.Record, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
