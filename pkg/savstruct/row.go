package savstruct

import (
	"fmt"
	"iter"
	"strings"
)

// Row is one case of a File. It reads through to the columns, so values
// set after the Row was taken are visible.
type Row struct {
	file  *File
	index int
}

// Index returns the case index.
func (r Row) Index() int { return r.index }

// Get returns the raw value of the named column.
func (r Row) Get(name string) (any, bool) {
	c, ok := r.file.Column(name)
	if !ok {
		return nil, false
	}
	v, err := c.Get(r.index)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Values returns the raw values in column order.
func (r Row) Values() []any {
	out := make([]any, 0, r.file.ColCount())
	for _, v := range r.All() {
		out = append(out, v)
	}
	return out
}

// Map returns the raw values keyed by column name.
func (r Row) Map() map[string]any {
	out := make(map[string]any, r.file.ColCount())
	for name, v := range r.All() {
		out[name] = v
	}
	return out
}

// All iterates over column names and raw values in column order.
func (r Row) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, c := range r.file.columns {
			v, _ := c.Get(r.index)
			if !yield(c.name, v) {
				return
			}
		}
	}
}

// Display renders the case as one "name<TAB>value" line per column.
func (r Row) Display(valueLabels bool) (string, error) {
	lines := make([]string, 0, r.file.ColCount())
	for _, c := range r.file.columns {
		v, err := c.Get(r.index)
		if err != nil {
			return "", err
		}
		s, err := c.Cell(v, valueLabels)
		if err != nil {
			return "", fmt.Errorf("column %s, case %d: %w", c.name, r.index, err)
		}
		lines = append(lines, c.name+"\t"+strings.TrimSpace(s))
	}
	return strings.Join(lines, "\n"), nil
}
