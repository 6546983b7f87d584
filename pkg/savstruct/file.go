package savstruct

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/ukaji3/savstruct-go/pkg/savstruct/frame"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/models"
)

// File is a loaded data file: its columns in file order.
type File struct {
	path    string
	frame   *frame.Frame
	meta    *models.Metadata
	opts    Options
	columns []*Column
	index   map[string]*Column
}

// Path returns the path the file was loaded from.
func (f *File) Path() string { return f.path }

// Metadata returns the dictionary reported by the reader.
func (f *File) Metadata() *models.Metadata { return f.meta }

// RowCount returns the number of cases.
func (f *File) RowCount() int {
	return f.frame.NumRows()
}

// ColCount returns the number of columns.
func (f *File) ColCount() int {
	return len(f.columns)
}

// Column returns the named column.
func (f *File) Column(name string) (*Column, bool) {
	c, ok := f.index[name]
	return c, ok
}

// Get returns the named column, or def if there is none.
func (f *File) Get(name string, def *Column) *Column {
	if c, ok := f.index[name]; ok {
		return c
	}
	return def
}

// Columns returns the columns in file order.
func (f *File) Columns() []*Column {
	return slices.Clone(f.columns)
}

// Cols iterates over the columns in file order.
func (f *File) Cols() iter.Seq[*Column] {
	return slices.Values(f.columns)
}

// Row returns case i.
func (f *File) Row(i int) (Row, error) {
	if i < 0 || i >= f.RowCount() {
		return Row{}, fmt.Errorf("row %d: %w (%d cases)", i, ErrIndexOutOfRange, f.RowCount())
	}
	return Row{file: f, index: i}, nil
}

// Rows iterates over the cases in order.
func (f *File) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i := range f.RowCount() {
			if !yield(i, Row{file: f, index: i}) {
				return
			}
		}
	}
}

// Display returns the file preview: a header with the case count followed
// by the first rows of every column.
func (f *File) Display() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SPSS .sav\nn=%d cases\n\n", f.RowCount())

	opts := DisplayOptions{
		ValueLabels: f.opts.ShouldUseValueLabels(),
		Rows:        Head(f.opts.Rows()),
	}
	for i, c := range f.columns {
		s, err := c.Display(opts)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// String returns the file preview.
func (f *File) String() string {
	return displayString(f.Display())
}

// Attach adds every column to reg and returns the names it skipped.
func (f *File) Attach(reg *Registry) []string {
	var skipped []string
	for _, c := range f.columns {
		if !c.Attach(reg) {
			skipped = append(skipped, c.name)
		}
	}
	return skipped
}
