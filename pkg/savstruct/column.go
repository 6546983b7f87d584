package savstruct

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ukaji3/savstruct-go/pkg/savstruct/format"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/frame"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/models"
)

// Ellipsis marks rows left out of a preview.
const Ellipsis = "…"

// Previews of columns with at least this many rows are abbreviated.
const (
	abbreviateAt = 10
	previewFirst = 5
	previewLast  = 3
)

// Column is one variable of a File. Its values are shared with the
// underlying frame; Set writes through.
type Column struct {
	name        string
	label       string
	spec        format.Spec
	valueLabels models.ValueLabels
	data        *frame.Series
}

// NewColumn wraps data with its dictionary entry. The format code must
// parse.
func NewColumn(data *frame.Series, name, label, code string, labels models.ValueLabels) (*Column, error) {
	spec, err := format.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", name, err)
	}
	if labels == nil {
		labels = models.ValueLabels{}
	}
	return &Column{
		name:        name,
		label:       label,
		spec:        spec,
		valueLabels: labels,
		data:        data,
	}, nil
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Label returns the variable label, or "" if there is none.
func (c *Column) Label() string { return c.label }

// Format returns the parsed display format.
func (c *Column) Format() format.Spec { return c.spec }

// ValueLabels returns the value label table in file order.
func (c *Column) ValueLabels() models.ValueLabels { return c.valueLabels }

// Len returns the number of cases.
func (c *Column) Len() int {
	return c.data.Len()
}

// Get returns the raw value of case i.
func (c *Column) Get(i int) (any, error) {
	return c.data.At(i)
}

// Set replaces the raw value of case i.
func (c *Column) Set(i int, v any) error {
	return c.data.Set(i, v)
}

// All iterates over case indexes and raw values.
func (c *Column) All() iter.Seq2[int, any] {
	return c.data.All()
}

// Values iterates over the raw values.
func (c *Column) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range c.data.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Cell renders v with the column format, or its value label when
// valueLabels is set and one exists.
func (c *Column) Cell(v any, valueLabels bool) (string, error) {
	if valueLabels && v != nil {
		if label, ok := c.valueLabels.Lookup(v); ok {
			return label, nil
		}
	}
	return format.Render(c.spec, v)
}

// Labelled renders case i with value labels.
func (c *Column) Labelled(i int) (string, error) {
	v, err := c.Get(i)
	if err != nil {
		return "", err
	}
	return c.Cell(v, true)
}

// Selector chooses which rows a column report shows.
type Selector struct {
	mode selectMode
	n    int
}

type selectMode int

const (
	selectPreview selectMode = iota
	selectHead
	selectTail
)

// Preview selects every row of short columns and the first 5 and last 3
// rows of longer ones.
var Preview = Selector{}

// Head selects the first n rows.
func Head(n int) Selector {
	return Selector{mode: selectHead, n: max(n, 0)}
}

// Tail selects the last n rows.
func Tail(n int) Selector {
	return Selector{mode: selectTail, n: max(n, 0)}
}

// DisplayOptions configures a column report.
type DisplayOptions struct {
	ValueLabels bool
	Rows        Selector
}

// Display returns a report of the column: its name, label, format, value
// labels and the selected rows.
func (c *Column) Display(opts DisplayOptions) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Column name:\t%s\n", c.name)
	fmt.Fprintf(&b, "Column label:\t'%s'\n", c.label)
	fmt.Fprintf(&b, "Format:\t%s\n", c.spec.Code)
	if len(c.valueLabels) == 0 {
		b.WriteString("Value labels:\t(none)\n")
	} else {
		b.WriteString("Value labels:\n")
		for _, l := range c.valueLabels {
			fmt.Fprintf(&b, "\t%s\t=> %q\n", models.FormatValue(l.Value), l.Label)
		}
	}
	fmt.Fprintf(&b, "Data (n=%d cases):", c.Len())

	n := c.Len()
	var lines []string
	var err error
	switch opts.Rows.mode {
	case selectHead:
		lines, err = c.cells(0, opts.Rows.n, opts.ValueLabels)
		lines = append(lines, Ellipsis)
	case selectTail:
		lines, err = c.cells(n-opts.Rows.n, n, opts.ValueLabels)
		lines = append([]string{Ellipsis}, lines...)
	default:
		if n < abbreviateAt {
			lines, err = c.cells(0, n, opts.ValueLabels)
			break
		}
		var first, last []string
		if first, err = c.cells(0, previewFirst, opts.ValueLabels); err != nil {
			break
		}
		last, err = c.cells(n-previewLast, n, opts.ValueLabels)
		lines = append(append(first, Ellipsis), last...)
	}
	if err != nil {
		return "", err
	}

	for _, line := range lines {
		b.WriteString("\n\t")
		b.WriteString(line)
	}
	return b.String(), nil
}

// cells renders the rows in [from, to), clamped to the column.
func (c *Column) cells(from, to int, valueLabels bool) ([]string, error) {
	from = max(from, 0)
	out := make([]string, 0, max(to-from, 0))
	for i, v := range c.data.Slice(from, to) {
		s, err := c.Cell(v, valueLabels)
		if err != nil {
			return nil, fmt.Errorf("column %s, case %d: %w", c.name, from+i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Head returns a report of the first n rows with value labels.
func (c *Column) Head(n int) (string, error) {
	return c.Display(DisplayOptions{ValueLabels: true, Rows: Head(n)})
}

// Tail returns a report of the last n rows with value labels.
func (c *Column) Tail(n int) (string, error) {
	return c.Display(DisplayOptions{ValueLabels: true, Rows: Tail(n)})
}

// String returns the preview report with value labels.
func (c *Column) String() string {
	return displayString(c.Display(DisplayOptions{ValueLabels: true}))
}

// GoString returns the preview report with raw values.
func (c *Column) GoString() string {
	return displayString(c.Display(DisplayOptions{}))
}

func displayString(s string, err error) string {
	if err != nil {
		return fmt.Sprintf("%%!(%v)", err)
	}
	return s
}
