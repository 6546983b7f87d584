package format

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		code     string
		typ      Type
		width    int
		decimals int
	}{
		{"A10", TypeString, 10, 0},
		{"F8.2", TypeNumeric, 8, 2},
		{"f8.2", TypeNumeric, 8, 2},
		{"PCT5.1", TypePercent, 5, 1},
		{"DOLLAR6.2", TypeDollar, 6, 2},
		{"DATETIME20", TypeDatetime, 20, 0},
		{"DATE11", TypeDate, 11, 0},
		{"EDATE10", TypeEDate, 10, 0},
		{"ADATE10", TypeADate, 10, 0},
		{"SDATE10", TypeSDate, 10, 0},
		{"TIME5", TypeTime, 5, 0},
		{"MTIME8", TypeMTime, 8, 0},
		{"DTIME8", TypeDTime, 8, 0},
		{"COMMA9.2", TypeOther, 9, 2},
		{" F3 ", TypeNumeric, 3, 0},
	}

	for _, tt := range tests {
		spec, err := Parse(tt.code)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tt.code, err)
			continue
		}
		if spec.Type != tt.typ || spec.Width != tt.width || spec.Decimals != tt.decimals {
			t.Errorf("Parse(%q) = {%v %d %d}, expected {%v %d %d}",
				tt.code, spec.Type, spec.Width, spec.Decimals, tt.typ, tt.width, tt.decimals)
		}
		if spec.Code != tt.code {
			t.Errorf("Parse(%q).Code = %q", tt.code, spec.Code)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, code := range []string{"", "F", "8.2", "F8.", "F8.2x", "F-8", "F8,2", "$8.2"} {
		_, err := Parse(code)
		if !errors.Is(err, ErrMalformedFormatCode) {
			t.Errorf("Parse(%q) error = %v, expected ErrMalformedFormatCode", code, err)
		}
	}
}

func TestRender(t *testing.T) {
	day := time.Date(2022, time.February, 22, 0, 0, 0, 0, time.UTC)
	clock := time.Date(1582, time.January, 1, 14, 5, 9, 0, time.UTC)

	// one day, one hour and one minute past the epoch
	const v = 86400 + 3600 + 60

	tests := []struct {
		code     string
		value    any
		expected string
	}{
		{"A10", "hi", "        hi"},
		{"A2", "hello", "hello"},
		{"F8.2", 3.5, "    3.50"},
		{"F8.2", 3, "    3.00"},
		{"F3", int64(-7), " -7"},
		{"PCT5.1", 12.3, " 12.3%"},
		{"DOLLAR6.2", 42, "$ 42.00"},
		{"DATETIME17", float64(v), "02-Jan-1582 01:01"},
		{"DATETIME20", float64(v + 5), "02-Jan-1582 01:01:05"},
		{"DATETIME22", v + 0.1234, "02-Jan-1582 01:01:00.123"},
		{"DATETIME20", time.Date(2022, time.February, 22, 14, 5, 0, 0, time.UTC), "22-Feb-2022 14:05:00"},
		{"DATE11", day, "22-Feb-2022"},
		{"EDATE10", day, "22.02.2022"},
		{"ADATE10", day, "02/22/2022"},
		{"SDATE10", day, "2022/02/22"},
		{"TIME4", clock, "14:05"},
		{"TIME5", clock, "14:05"},
		{"TIME8", clock, "14:05:09"},
		{"MTIME5", 14*time.Hour + 5*time.Minute, "14:05"},
		{"DTIME8", float64(3600), "01:00:00"},
		{"COMMA9.2", 1234.5, "1234.5"},
		{"F8.2", nil, "       ."},
		{"A3", nil, "  ."},
	}

	for _, tt := range tests {
		result, err := Render(MustParse(tt.code), tt.value)
		if err != nil {
			t.Errorf("Render(%s, %v) returned error: %v", tt.code, tt.value, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("Render(%s, %v) = %q, expected %q", tt.code, tt.value, result, tt.expected)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		code     string
		value    any
		expected error
	}{
		{"DATETIME23", float64(90060), ErrUnsupportedDatetimeWidth},
		{"DATETIME16", float64(0), ErrUnsupportedDatetimeWidth},
		{"TIME11", time.Now(), ErrUnsupportedTimeWidth},
		{"F8.2", "3.5", ErrValueType},
		{"DATE11", "2022-02-22", ErrValueType},
		{"DATETIME20", "soon", ErrValueType},
	}

	for _, tt := range tests {
		_, err := Render(MustParse(tt.code), tt.value)
		if !errors.Is(err, tt.expected) {
			t.Errorf("Render(%s, %v) error = %v, expected %v", tt.code, tt.value, err, tt.expected)
		}

		var renderErr *RenderError
		if !errors.As(err, &renderErr) || renderErr.Code != tt.code {
			t.Errorf("Render(%s, %v) error = %v, expected a RenderError", tt.code, tt.value, err)
		}
	}
}

func TestFromSeconds(t *testing.T) {
	if got := FromSeconds(0); !got.Equal(Epoch) {
		t.Errorf("FromSeconds(0) = %v, expected %v", got, Epoch)
	}

	// Beyond the range of time.Duration.
	y2k := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := FromSeconds(float64(y2k.Unix() - Epoch.Unix())); !got.Equal(y2k) {
		t.Errorf("FromSeconds(y2k) = %v, expected %v", got, y2k)
	}

	if got := FromSeconds(-1); got.Year() != 1581 {
		t.Errorf("FromSeconds(-1).Year() = %d, expected 1581", got.Year())
	}
}

func TestTypeString(t *testing.T) {
	if TypeDatetime.String() != "DATETIME" {
		t.Errorf("TypeDatetime.String() = %q", TypeDatetime.String())
	}
	if TypeOther.String() != "OTHER" {
		t.Errorf("TypeOther.String() = %q", TypeOther.String())
	}
	if !TypeSDate.IsDate() || TypeTime.IsDate() {
		t.Errorf("IsDate misclassifies date families")
	}
	if !TypeDTime.IsTime() || TypeDatetime.IsTime() {
		t.Errorf("IsTime misclassifies time families")
	}
}
