package parser

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat indicates the input is not an SPSS system file.
var ErrInvalidFormat = errors.New("invalid sav format")

// ErrUnsupportedCompression indicates a compression scheme the decoder cannot read.
var ErrUnsupportedCompression = errors.New("unsupported compression")

// RecordError represents a failure while decoding one record of a system file.
type RecordError struct {
	Record string // "header", "variable", "value labels", "extension", "case data", ...
	Offset int64
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s record at offset %d: %v", e.Record, e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewRecordError creates a new RecordError.
func NewRecordError(record string, offset int64, err error) *RecordError {
	return &RecordError{
		Record: record,
		Offset: offset,
		Err:    err,
	}
}
