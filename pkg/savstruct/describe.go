package savstruct

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/ukaji3/savstruct-go/pkg/savstruct/format"
)

// Summary holds descriptive statistics of a numeric column.
type Summary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
}

// Describe summarizes the numeric values of the column. Missing values are
// counted but not summarized. StdDev is the sample standard deviation, zero
// for a single value.
func (c *Column) Describe() (Summary, error) {
	s := Summary{Name: c.name}

	var data stats.Float64Data
	for v := range c.Values() {
		if v == nil {
			s.Missing++
			continue
		}
		if f, ok := format.ToFloat(v); ok {
			data = append(data, f)
		}
	}
	if len(data) == 0 {
		return s, fmt.Errorf("column %s: %w", c.name, ErrNoNumericData)
	}
	s.Count = len(data)

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}

	// A single value has no spread and no halves to split into quartiles.
	if len(data) == 1 {
		s.Q1, s.Q3 = data[0], data[0]
		return s, nil
	}

	if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return s, err
	}
	q, err := stats.Quartile(data)
	if err != nil {
		return s, err
	}
	s.Q1, s.Q3 = q.Q1, q.Q3

	return s, nil
}

// String returns the summary as a small table.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summary of %s:\n", s.Name)
	fmt.Fprintf(&b, "\tcount\t%d\n", s.Count)
	fmt.Fprintf(&b, "\tmissing\t%d\n", s.Missing)
	for _, row := range []struct {
		name  string
		value float64
	}{
		{"mean", s.Mean},
		{"std", s.StdDev},
		{"min", s.Min},
		{"25%", s.Q1},
		{"50%", s.Median},
		{"75%", s.Q3},
		{"max", s.Max},
	} {
		fmt.Fprintf(&b, "\t%s\t%.4g\n", row.name, row.value)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
