package format

import (
	"errors"
	"fmt"
)

// ErrMalformedFormatCode indicates a format code is not <letters><digits>[.<digits>].
var ErrMalformedFormatCode = errors.New("malformed format code")

// ErrUnsupportedDatetimeWidth indicates a DATETIME width other than 17, 20 or 22.
var ErrUnsupportedDatetimeWidth = errors.New("unsupported datetime width")

// ErrUnsupportedTimeWidth indicates a TIME, MTIME or DTIME width other than 4, 5 or 8.
var ErrUnsupportedTimeWidth = errors.New("unsupported time width")

// ErrValueType indicates a value whose runtime type cannot be shown with the format.
var ErrValueType = errors.New("value type does not match format")

// RenderError represents a failure to render a single value.
type RenderError struct {
	Code  string
	Value any
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %v (%T) as %s: %v", e.Value, e.Value, e.Code, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func newRenderError(spec Spec, value any, err error) *RenderError {
	return &RenderError{
		Code:  spec.Code,
		Value: value,
		Err:   err,
	}
}
