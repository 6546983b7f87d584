// Package format parses SPSS display format codes and renders values with them.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Type is the display family named by the letters of a format code.
type Type int

const (
	// TypeOther covers every format family without a dedicated renderer.
	TypeOther Type = iota
	// TypeString is A: right-justified text.
	TypeString
	// TypeNumeric is F: fixed-point numbers.
	TypeNumeric
	// TypePercent is PCT: fixed-point numbers with a trailing percent sign.
	TypePercent
	// TypeDollar is DOLLAR: fixed-point numbers with a leading dollar sign.
	TypeDollar
	// TypeDatetime is DATETIME: seconds since the SPSS epoch.
	TypeDatetime
	// TypeDate is DATE: 22-Feb-2022.
	TypeDate
	// TypeEDate is EDATE: 22.02.2022.
	TypeEDate
	// TypeADate is ADATE: 02/22/2022.
	TypeADate
	// TypeSDate is SDATE: 2022/02/22.
	TypeSDate
	// TypeTime is TIME: time of day.
	TypeTime
	// TypeMTime is MTIME: time of day.
	TypeMTime
	// TypeDTime is DTIME: time of day.
	TypeDTime
)

// typeNames maps format code letters to their family.
var typeNames = map[string]Type{
	"A":        TypeString,
	"F":        TypeNumeric,
	"PCT":      TypePercent,
	"DOLLAR":   TypeDollar,
	"DATETIME": TypeDatetime,
	"DATE":     TypeDate,
	"EDATE":    TypeEDate,
	"ADATE":    TypeADate,
	"SDATE":    TypeSDate,
	"TIME":     TypeTime,
	"MTIME":    TypeMTime,
	"DTIME":    TypeDTime,
}

// String returns the format code letters of the family, or "OTHER".
func (t Type) String() string {
	for name, typ := range typeNames {
		if typ == t {
			return name
		}
	}
	return "OTHER"
}

// IsDate reports whether the family holds calendar dates.
func (t Type) IsDate() bool {
	switch t {
	case TypeDate, TypeEDate, TypeADate, TypeSDate:
		return true
	}
	return false
}

// IsTime reports whether the family holds times of day.
func (t Type) IsTime() bool {
	switch t {
	case TypeTime, TypeMTime, TypeDTime:
		return true
	}
	return false
}

// IsNumeric reports whether the family renders plain fixed-point numbers.
func (t Type) IsNumeric() bool {
	switch t {
	case TypeNumeric, TypePercent, TypeDollar:
		return true
	}
	return false
}

// Spec is a parsed format code.
type Spec struct {
	// Type is the display family.
	Type Type `json:"type"`
	// Width is the total field width.
	Width int `json:"width"`
	// Decimals is the number of digits after the decimal point.
	Decimals int `json:"decimals"`
	// Code is the format code as given to Parse.
	Code string `json:"code"`
}

// String returns the original format code.
func (s Spec) String() string {
	return s.Code
}

// codePattern matches <letters><width>[.<decimals>].
var codePattern = regexp.MustCompile(`^([A-Z]+)(\d+)(?:\.(\d+))?$`)

// Parse parses a format code such as "F8.2", "a10" or "DATETIME20".
// Letters are matched case-insensitively and decimals default to 0.
func Parse(code string) (Spec, error) {
	m := codePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code)))
	if m == nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrMalformedFormatCode, code)
	}

	width, err := strconv.Atoi(m[2])
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %q: width: %v", ErrMalformedFormatCode, code, err)
	}

	decimals := 0
	if m[3] != "" {
		decimals, err = strconv.Atoi(m[3])
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %q: decimals: %v", ErrMalformedFormatCode, code, err)
		}
	}

	typ, ok := typeNames[m[1]]
	if !ok {
		typ = TypeOther
	}

	return Spec{
		Type:     typ,
		Width:    width,
		Decimals: decimals,
		Code:     code,
	}, nil
}

// MustParse is like Parse but panics if the code is malformed.
func MustParse(code string) Spec {
	spec, err := Parse(code)
	if err != nil {
		panic(err)
	}
	return spec
}
