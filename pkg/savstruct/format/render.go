package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Epoch is the instant that DATETIME second counts are measured from.
var Epoch = time.Date(1582, time.January, 1, 0, 0, 0, 0, time.UTC)

// Datetime layouts by DATETIME width.
var datetimeLayouts = map[int]string{
	17: "02-Jan-2006 15:04",
	20: "02-Jan-2006 15:04:05",
	22: "02-Jan-2006 15:04:05.000",
}

// Time of day layouts by TIME, MTIME and DTIME width.
var timeLayouts = map[int]string{
	4: "15:04",
	5: "15:04",
	8: "15:04:05",
}

// Missing is shown for nil values, right-justified to the field width.
const Missing = "."

// FromSeconds converts a count of seconds since Epoch to a UTC time,
// rounded to the microsecond.
func FromSeconds(sec float64) time.Time {
	whole := math.Floor(sec)
	micros := math.Round((sec - whole) * 1e6)
	return time.Unix(Epoch.Unix()+int64(whole), int64(micros)*int64(time.Microsecond)).UTC()
}

// Render returns value formatted as spec describes.
//
// Numeric families accept any Go integer or float type. DATETIME accepts
// seconds since Epoch or a time.Time. Date families accept a time.Time
// (or seconds since Epoch), and time families also accept a time.Duration
// since midnight. Unrecognized families fall back to fmt.Sprint.
func Render(spec Spec, value any) (string, error) {
	if value == nil {
		return pad(Missing, spec.Width), nil
	}

	switch spec.Type {
	case TypeString:
		return pad(toString(value), spec.Width), nil

	case TypeNumeric, TypePercent, TypeDollar:
		f, ok := ToFloat(value)
		if !ok {
			return "", newRenderError(spec, value, ErrValueType)
		}
		s := fmt.Sprintf("%*.*f", spec.Width, spec.Decimals, f)
		switch spec.Type {
		case TypePercent:
			return s + "%", nil
		case TypeDollar:
			return "$" + s, nil
		}
		return s, nil

	case TypeDatetime:
		layout, ok := datetimeLayouts[spec.Width]
		if !ok {
			return "", newRenderError(spec, value, ErrUnsupportedDatetimeWidth)
		}
		t, ok := toInstant(value)
		if !ok {
			return "", newRenderError(spec, value, ErrValueType)
		}
		return t.Format(layout), nil

	case TypeDate, TypeEDate, TypeADate, TypeSDate:
		t, ok := toInstant(value)
		if !ok {
			return "", newRenderError(spec, value, ErrValueType)
		}
		return t.Format(dateLayout(spec.Type)), nil

	case TypeTime, TypeMTime, TypeDTime:
		layout, ok := timeLayouts[spec.Width]
		if !ok {
			return "", newRenderError(spec, value, ErrUnsupportedTimeWidth)
		}
		t, ok := toClock(value)
		if !ok {
			return "", newRenderError(spec, value, ErrValueType)
		}
		return t.Format(layout), nil
	}

	return fmt.Sprint(value), nil
}

// dateLayout returns the layout for a date family.
func dateLayout(t Type) string {
	switch t {
	case TypeDate:
		return "02-Jan-2006"
	case TypeEDate:
		return "02.01.2006"
	case TypeADate:
		return "01/02/2006"
	case TypeSDate:
		return "2006/01/02"
	default:
		return "2006-01-02"
	}
}

// pad right-justifies s in a field of the given width.
func pad(s string, width int) string {
	if n := width - len([]rune(s)); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// ToFloat converts any Go integer or float value to float64.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// toInstant accepts a time.Time or seconds since Epoch.
func toInstant(value any) (time.Time, bool) {
	if t, ok := value.(time.Time); ok {
		return t, true
	}
	f, ok := ToFloat(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	return FromSeconds(f), true
}

// toClock is toInstant plus time.Duration offsets from midnight.
func toClock(value any) (time.Time, bool) {
	if d, ok := value.(time.Duration); ok {
		return Epoch.Add(d), true
	}
	return toInstant(value)
}
