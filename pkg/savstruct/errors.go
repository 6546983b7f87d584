package savstruct

import (
	"errors"
	"fmt"

	"github.com/ukaji3/savstruct-go/pkg/savstruct/format"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/frame"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/parser"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid .sav file.
var ErrInvalidFormat = parser.ErrInvalidFormat

// ErrIndexOutOfRange indicates a case index outside the column or file.
var ErrIndexOutOfRange = frame.ErrIndexOutOfRange

// ErrNoNumericData indicates a summary was requested for a column without numbers.
var ErrNoNumericData = errors.New("no numeric data")

// Format errors, re-exported for callers that only import this package.
var (
	ErrMalformedFormatCode      = format.ErrMalformedFormatCode
	ErrUnsupportedDatetimeWidth = format.ErrUnsupportedDatetimeWidth
	ErrUnsupportedTimeWidth     = format.ErrUnsupportedTimeWidth
)

// FileReadError represents a failure to load a file.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// NewFileReadError creates a new FileReadError.
func NewFileReadError(path string, err error) *FileReadError {
	return &FileReadError{
		Path: path,
		Err:  err,
	}
}
