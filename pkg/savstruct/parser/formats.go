package parser

import "fmt"

// formatTypes maps SPSS print format type codes to format code letters.
var formatTypes = map[int]string{
	1:  "A",
	2:  "AHEX",
	3:  "COMMA",
	4:  "DOLLAR",
	5:  "F",
	6:  "IB",
	7:  "PIBHEX",
	8:  "P",
	9:  "PIB",
	10: "PK",
	11: "RB",
	12: "RBHEX",
	15: "Z",
	16: "N",
	17: "E",
	20: "DATE",
	21: "TIME",
	22: "DATETIME",
	23: "ADATE",
	24: "JDATE",
	25: "DTIME",
	26: "WKDAY",
	27: "MONTH",
	28: "MOYR",
	29: "QYR",
	30: "WKYR",
	31: "PCT",
	32: "DOT",
	33: "CCA",
	34: "CCB",
	35: "CCC",
	36: "CCD",
	37: "CCE",
	38: "EDATE",
	39: "SDATE",
	40: "MTIME",
	41: "YMDHMS",
}

// FormatTypeCode returns the type code for format code letters, or 0.
func FormatTypeCode(name string) int {
	for code, n := range formatTypes {
		if n == name {
			return code
		}
	}
	return 0
}

// decimalFormats always show their decimal count, even when zero.
var decimalFormats = map[string]bool{
	"F":      true,
	"COMMA":  true,
	"DOT":    true,
	"DOLLAR": true,
	"PCT":    true,
	"E":      true,
}

// valueKind says how case values of a variable are represented.
type valueKind int

const (
	kindNumber valueKind = iota
	kindString
	kindDate
	kindClock
	kindDatetime
)

// printFormat is an unpacked print or write format.
type printFormat struct {
	typ      int
	width    int
	decimals int
}

// unpackFormat splits the packed type<<16 | width<<8 | decimals integer.
func unpackFormat(packed int32) printFormat {
	return printFormat{
		typ:      int(packed>>16) & 0xff,
		width:    int(packed>>8) & 0xff,
		decimals: int(packed) & 0xff,
	}
}

// PackFormat is the inverse of the header encoding of print formats.
func PackFormat(typ, width, decimals int) int32 {
	return int32(typ<<16 | width<<8 | decimals)
}

// code returns the format code string, e.g. F8.2 or DATETIME20.
// Unknown type codes are shown as F.
func (f printFormat) code() string {
	name, ok := formatTypes[f.typ]
	if !ok {
		name = "F"
	}
	if f.decimals > 0 || decimalFormats[name] {
		return fmt.Sprintf("%s%d.%d", name, f.width, f.decimals)
	}
	return fmt.Sprintf("%s%d", name, f.width)
}

// kind returns how values with this format are converted.
func (f printFormat) kind() valueKind {
	switch formatTypes[f.typ] {
	case "DATE", "ADATE", "EDATE", "SDATE":
		return kindDate
	case "TIME", "MTIME", "DTIME":
		return kindClock
	case "DATETIME":
		return kindDatetime
	}
	return kindNumber
}
