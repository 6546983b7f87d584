package models

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ukaji3/savstruct-go/pkg/savstruct/format"
)

// ValueLabel pairs a raw coded value with its display string.
type ValueLabel struct {
	// Value is the raw value: float64 for numeric variables, time.Time for
	// date, time and datetime variables, string otherwise.
	Value any `json:"value"`
	// Label is the display string.
	Label string `json:"label"`
}

// ValueLabels is an ordered set of value labels.
type ValueLabels []ValueLabel

// Lookup returns the label for v, if one is defined.
func (vl ValueLabels) Lookup(v any) (string, bool) {
	for _, l := range vl {
		if Equal(l.Value, v) {
			return l.Label, true
		}
	}
	return "", false
}

// Equal compares two raw values. Numbers of any Go numeric type compare by
// value, times compare as instants and everything else compares with ==.
func Equal(a, b any) bool {
	fa, aok := number(a)
	fb, bok := number(b)
	if aok || bok {
		return aok && bok && fa == fb
	}
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if aok || bok {
		return aok && bok && ta.Equal(tb)
	}
	return a == b
}

// FormatValue renders a raw value the way value label tables show it.
func FormatValue(v any) string {
	if f, ok := number(v); ok {
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatFloat(f, 'f', 0, 64)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprint(v)
}

func number(v any) (float64, bool) {
	return format.ToFloat(v)
}
