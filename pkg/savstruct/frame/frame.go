// Package frame is a small column-oriented store for case data.
//
// A Frame holds an ordered set of named Series of equal length. Series data
// is a []any holding one scalar per case: float64, string, time.Time or nil
// for missing values. Values may be replaced in place but a Frame never
// changes shape after construction.
package frame

import (
	"errors"
	"fmt"
	"iter"
)

// ErrIndexOutOfRange indicates a case index outside [0, length).
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrLengthMismatch indicates series of different lengths in one Frame.
var ErrLengthMismatch = errors.New("series length mismatch")

// A Series is a named one-dimensional sequence of values.
type Series struct {
	// Name identifies the series within its Frame.
	Name string

	data []any
}

// NewSeries returns a Series holding data. The slice is not copied.
func NewSeries(name string, data []any) *Series {
	return &Series{Name: name, data: data}
}

// Len returns the number of values.
func (s *Series) Len() int {
	return len(s.data)
}

// At returns the value at index i.
func (s *Series) At(i int) (any, error) {
	if i < 0 || i >= len(s.data) {
		return nil, fmt.Errorf("%s[%d]: %w (length %d)", s.Name, i, ErrIndexOutOfRange, len(s.data))
	}
	return s.data[i], nil
}

// Set replaces the value at index i.
func (s *Series) Set(i int, v any) error {
	if i < 0 || i >= len(s.data) {
		return fmt.Errorf("%s[%d]: %w (length %d)", s.Name, i, ErrIndexOutOfRange, len(s.data))
	}
	s.data[i] = v
	return nil
}

// Values returns the underlying slice. Changes to it are visible to the Series.
func (s *Series) Values() []any {
	return s.data
}

// Slice returns the values in [from, to), clamped to the series bounds.
func (s *Series) Slice(from, to int) []any {
	from = max(0, min(from, len(s.data)))
	to = max(from, min(to, len(s.data)))
	return s.data[from:to]
}

// All iterates over the values in index order. Each call starts afresh.
func (s *Series) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i := range s.data {
			if !yield(i, s.data[i]) {
				return
			}
		}
	}
}

// A Frame is an ordered collection of equal-length Series.
type Frame struct {
	series []*Series
	index  map[string]int
	rows   int
}

// New returns a Frame over the given series. All series must have the
// same length and distinct names.
func New(series ...*Series) (*Frame, error) {
	f := &Frame{
		series: series,
		index:  make(map[string]int, len(series)),
	}

	for i, s := range series {
		if _, dup := f.index[s.Name]; dup {
			return nil, fmt.Errorf("duplicate series name %q", s.Name)
		}
		f.index[s.Name] = i

		if i == 0 {
			f.rows = s.Len()
		} else if s.Len() != f.rows {
			return nil, fmt.Errorf("%w: %q has %d values, expected %d", ErrLengthMismatch, s.Name, s.Len(), f.rows)
		}
	}

	return f, nil
}

// NumRows returns the number of cases.
func (f *Frame) NumRows() int {
	return f.rows
}

// NumCols returns the number of series.
func (f *Frame) NumCols() int {
	return len(f.series)
}

// Series returns the named series.
func (f *Frame) Series(name string) (*Series, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.series[i], true
}

// Columns returns the series in order.
func (f *Frame) Columns() []*Series {
	return f.series
}
