// Package savtest builds small SPSS system files for tests.
//
// It covers the subset of the format the decoder reads: numeric and string
// variables (with continuation records), labels, missing values, value
// labels, documents, long names, encoding records and both uncompressed and
// bytecode compressed case data.
package savtest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// CalendarOrigin is day zero of SPSS date values.
var CalendarOrigin = time.Date(1582, time.October, 14, 0, 0, 0, 0, time.UTC)

// DateSeconds returns t as seconds since CalendarOrigin.
func DateSeconds(t time.Time) float64 {
	return float64(t.Unix() - CalendarOrigin.Unix())
}

// typeCodes maps format letters to print format type codes.
var typeCodes = map[string]int{
	"A": 1, "COMMA": 3, "DOLLAR": 4, "F": 5, "E": 17,
	"DATE": 20, "TIME": 21, "DATETIME": 22, "ADATE": 23, "JDATE": 24,
	"DTIME": 25, "PCT": 31, "DOT": 32, "EDATE": 38, "SDATE": 39, "MTIME": 40,
}

var codePattern = regexp.MustCompile(`^([A-Z]+)(\d+)(?:\.(\d+))?$`)

// Label is one value label.
type Label struct {
	Value any // float64 or string
	Label string
}

// Variable describes one variable to encode.
type Variable struct {
	Name         string // long name; a short name is derived
	Label        string
	Width        int    // 0 for numeric, 1..255 for strings
	Format       string // defaults to F8.2 or A<width>
	Missing      []any  // discrete user-missing values
	MissingRange []float64
	ValueLabels  []Label
}

// File describes a system file to encode.
type File struct {
	Label       string
	Encoding    string // written as an encoding record and used for all text
	Compressed  bool
	BigEndian   bool
	UnknownRows bool // write -1 as the case count
	Notes       []string
	Variables   []Variable
	Rows        [][]any // float64, int, string or nil (system-missing)
}

// Write encodes f to path.
func (f *File) Write(path string) error {
	data, err := f.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Bytes encodes f.
func (f *File) Bytes() ([]byte, error) {
	w := &writer{order: binary.LittleEndian}
	if f.BigEndian {
		w.order = binary.BigEndian
	}
	if f.Encoding != "" {
		enc, err := htmlindex.Get(f.Encoding)
		if err != nil {
			return nil, err
		}
		w.enc = enc.NewEncoder()
	}

	slots := 0
	for _, v := range f.Variables {
		slots += slotCount(v)
	}

	// header
	w.raw([]byte("$FL2"))
	w.padded("@(#) SPSS DATA FILE savtest", 60)
	w.int32(2)
	w.int32(int32(slots))
	if f.Compressed {
		w.int32(1)
	} else {
		w.int32(0)
	}
	w.int32(0)
	if f.UnknownRows {
		w.int32(-1)
	} else {
		w.int32(int32(len(f.Rows)))
	}
	w.float64(100)
	w.padded("17 Oct 26", 9)
	w.padded("12:30:00", 8)
	w.paddedText(f.Label, 64)
	w.raw(make([]byte, 3))

	// variables
	position := 0
	positions := make([]int, len(f.Variables))
	longNames := make([]string, len(f.Variables))
	for i, v := range f.Variables {
		position++
		positions[i] = position

		short := strings.ToUpper(v.Name)
		if len(short) > 8 || strings.ContainsAny(short, " =\t") {
			short = fmt.Sprintf("V%d", i+1)
		}
		longNames[i] = short + "=" + v.Name

		code, err := packFormat(v)
		if err != nil {
			return nil, err
		}

		w.int32(2)
		w.int32(int32(v.Width))
		if v.Label != "" {
			w.int32(1)
		} else {
			w.int32(0)
		}
		nMissing := int32(len(v.Missing))
		if len(v.MissingRange) == 2 {
			nMissing = -(2 + nMissing)
		}
		w.int32(nMissing)
		w.int32(code)
		w.int32(code)
		w.padded(short, 8)

		if v.Label != "" {
			label := w.text(v.Label)
			w.int32(int32(len(label)))
			w.raw(label)
			w.raw(make([]byte, roundUp(len(label), 4)-len(label)))
		}
		if len(v.MissingRange) == 2 {
			w.float64(v.MissingRange[0])
			w.float64(v.MissingRange[1])
		}
		for _, m := range v.Missing {
			if err := w.slotValue(m); err != nil {
				return nil, err
			}
		}

		for range slotCount(v) - 1 {
			position++
			w.int32(2)
			w.int32(-1)
			w.int32(0)
			w.int32(0)
			w.int32(0)
			w.int32(0)
			w.padded("", 8)
		}
	}

	// value labels
	for i, v := range f.Variables {
		if len(v.ValueLabels) == 0 {
			continue
		}
		w.int32(3)
		w.int32(int32(len(v.ValueLabels)))
		for _, l := range v.ValueLabels {
			if err := w.slotValue(l.Value); err != nil {
				return nil, err
			}
			label := w.text(l.Label)
			if len(label) > 255 {
				return nil, fmt.Errorf("value label too long: %q", l.Label)
			}
			w.raw([]byte{byte(len(label))})
			w.raw(label)
			w.raw(make([]byte, roundUp(len(label)+1, 8)-len(label)-1))
		}
		w.int32(4)
		w.int32(1)
		w.int32(int32(positions[i]))
	}

	// documents
	if len(f.Notes) > 0 {
		w.int32(6)
		w.int32(int32(len(f.Notes)))
		for _, n := range f.Notes {
			w.paddedText(n, 80)
		}
	}

	// machine integer info
	w.int32(7)
	w.int32(3)
	w.int32(4)
	w.int32(8)
	codePage := int32(65001)
	if f.Encoding != "" {
		codePage = 0
	}
	for _, v := range []int32{20, 0, 0, -1, 1, 1, 2, codePage} {
		w.int32(v)
	}

	// an extension the decoder skips
	w.int32(7)
	w.int32(11)
	w.int32(4)
	w.int32(int32(3 * len(f.Variables)))
	for range 3 * len(f.Variables) {
		w.int32(1)
	}

	// long names
	names := w.text(strings.Join(longNames, "\t"))
	w.int32(7)
	w.int32(13)
	w.int32(1)
	w.int32(int32(len(names)))
	w.raw(names)

	if f.Encoding != "" {
		w.int32(7)
		w.int32(20)
		w.int32(1)
		w.int32(int32(len(f.Encoding)))
		w.raw([]byte(f.Encoding))
	}

	w.int32(999)
	w.int32(0)

	// data
	var c *compressor
	if f.Compressed {
		c = &compressor{w: w}
	}
	for r, row := range f.Rows {
		if len(row) != len(f.Variables) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", r, len(row), len(f.Variables))
		}
		for i, v := range f.Variables {
			if err := w.caseValue(c, v, row[i]); err != nil {
				return nil, fmt.Errorf("row %d, %s: %w", r, v.Name, err)
			}
		}
	}
	if c != nil {
		c.finish()
	}

	return w.buf.Bytes(), w.err
}

func slotCount(v Variable) int {
	if v.Width == 0 {
		return 1
	}
	return (v.Width + 7) / 8
}

func packFormat(v Variable) (int32, error) {
	code := v.Format
	if code == "" {
		code = "F8.2"
		if v.Width > 0 {
			code = "A" + strconv.Itoa(v.Width)
		}
	}
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return 0, fmt.Errorf("bad format %q", code)
	}
	typ, ok := typeCodes[m[1]]
	if !ok {
		return 0, fmt.Errorf("unknown format type %q", m[1])
	}
	width, _ := strconv.Atoi(m[2])
	decimals, _ := strconv.Atoi(m[3])
	return int32(typ<<16 | width<<8 | decimals), nil
}

func roundUp(n, multiple int) int {
	return (n + multiple - 1) / multiple * multiple
}

type writer struct {
	buf   bytes.Buffer
	order binary.ByteOrder
	enc   *encoding.Encoder
	err   error
}

func (w *writer) raw(b []byte) {
	w.buf.Write(b)
}

func (w *writer) int32(v int32) {
	var b [4]byte
	w.order.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

func (w *writer) float64(v float64) {
	w.buf.Write(w.floatBytes(v))
}

func (w *writer) floatBytes(v float64) []byte {
	b := make([]byte, 8)
	w.order.PutUint64(b, math.Float64bits(v))
	return b
}

// text encodes s with the file's character set.
func (w *writer) text(s string) []byte {
	if w.enc == nil {
		return []byte(s)
	}
	out, err := w.enc.String(s)
	if err != nil && w.err == nil {
		w.err = err
	}
	return []byte(out)
}

// padded writes ASCII s space-padded or truncated to n bytes.
func (w *writer) padded(s string, n int) {
	w.fit([]byte(s), n)
}

func (w *writer) paddedText(s string, n int) {
	w.fit(w.text(s), n)
}

func (w *writer) fit(b []byte, n int) {
	if len(b) > n {
		b = b[:n]
	}
	w.buf.Write(b)
	w.buf.Write(bytes.Repeat([]byte{' '}, n-len(b)))
}

// slotValue writes one 8-byte value: a number or a space-padded string.
func (w *writer) slotValue(v any) error {
	switch x := v.(type) {
	case string:
		w.paddedText(x, 8)
	default:
		f, ok := number(v)
		if !ok {
			return fmt.Errorf("unsupported value %v (%T)", v, v)
		}
		w.float64(f)
	}
	return nil
}

func (w *writer) caseValue(c *compressor, v Variable, value any) error {
	if v.Width > 0 {
		s, ok := value.(string)
		if !ok && value != nil {
			return fmt.Errorf("string variable given %T", value)
		}
		b := w.text(s)
		if len(b) > v.Width {
			b = b[:v.Width]
		}
		n := slotCount(v) * 8
		b = append(b, bytes.Repeat([]byte{' '}, n-len(b))...)
		for i := 0; i < n; i += 8 {
			if c != nil {
				c.slot(b[i : i+8])
			} else {
				w.raw(b[i : i+8])
			}
		}
		return nil
	}

	f := -math.MaxFloat64
	if value != nil {
		var ok bool
		if f, ok = number(value); !ok {
			return fmt.Errorf("numeric variable given %T", value)
		}
	}
	if c != nil {
		c.number(f)
	} else {
		w.float64(f)
	}
	return nil
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// compressor emits bytecode compressed slots with a bias of 100.
type compressor struct {
	w       *writer
	opcodes []byte
	pending bytes.Buffer
}

func (c *compressor) op(code byte, raw []byte) {
	c.opcodes = append(c.opcodes, code)
	c.pending.Write(raw)
	if len(c.opcodes) == 8 {
		c.flush()
	}
}

func (c *compressor) flush() {
	c.w.raw(c.opcodes)
	c.w.raw(c.pending.Bytes())
	c.opcodes = c.opcodes[:0]
	c.pending.Reset()
}

func (c *compressor) number(f float64) {
	switch {
	case f == -math.MaxFloat64:
		c.op(255, nil)
	case f == math.Trunc(f) && f >= -99 && f <= 151:
		c.op(byte(f+100), nil)
	default:
		c.op(253, c.w.floatBytes(f))
	}
}

func (c *compressor) slot(b []byte) {
	if bytes.Equal(b, []byte("        ")) {
		c.op(254, nil)
		return
	}
	c.op(253, b)
}

func (c *compressor) finish() {
	c.opcodes = append(c.opcodes, 252)
	for len(c.opcodes) < 8 {
		c.opcodes = append(c.opcodes, 0)
	}
	c.flush()
}
