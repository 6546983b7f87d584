// Package parser decodes SPSS system (.sav) files into a frame and its
// dictionary metadata.
//
// The decoder reads the file header, the dictionary (variables, value labels,
// documents and the extension records it understands) and then all cases,
// either uncompressed or bytecode compressed. Technical information about the
// format: https://www.gnu.org/software/pspp/pss-dev/html_node/System-File-Format.html
package parser

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ukaji3/savstruct-go/pkg/savstruct/format"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/frame"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/models"
)

// sysmis is the system-missing value.
var sysmis = -math.MaxFloat64

// maxRecordLength bounds any single length read from the file.
const maxRecordLength = 1 << 24

// maxPreallocatedValues caps the case data capacity taken from the header,
// summed over all columns.
const maxPreallocatedValues = 1 << 20

// calendarOrigin is day zero of SPSS date values.
var calendarOrigin = time.Date(1582, time.October, 14, 0, 0, 0, 0, time.UTC)

// Options configures decoding.
type Options struct {
	// Encoding overrides the character set declared in the file.
	Encoding string
	// UserMissing keeps user-missing values instead of replacing them with nil.
	UserMissing bool
}

// SavReader reads .sav files from disk.
type SavReader struct {
	Options Options
}

// NewSavReader returns a SavReader with the given options.
func NewSavReader(opts Options) *SavReader {
	return &SavReader{Options: opts}
}

// Read decodes the file at path.
func (r *SavReader) Read(path string) (*frame.Frame, *models.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	return Decode(f, r.Options)
}

// Decode decodes a system file from r.
func Decode(r io.Reader, opts Options) (*frame.Frame, *models.Metadata, error) {
	d := &decoder{
		r:    bufio.NewReader(r),
		opts: opts,
	}

	h, err := d.readHeader()
	if err != nil {
		return nil, nil, err
	}

	dict, err := d.readDictionary()
	if err != nil {
		return nil, nil, err
	}

	meta, err := d.buildMetadata(h, dict)
	if err != nil {
		return nil, nil, err
	}

	columns, err := d.readCases(h, dict)
	if err != nil {
		return nil, nil, err
	}

	series := make([]*frame.Series, len(dict.vars))
	for i, v := range dict.vars {
		series[i] = frame.NewSeries(v.longName, columns[i])
	}

	fr, err := frame.New(series...)
	if err != nil {
		return nil, nil, NewRecordError("dictionary", 0, err)
	}
	meta.RowCount = fr.NumRows()

	return fr, meta, nil
}

// decoder carries the read position and byte order through a file.
type decoder struct {
	r      *bufio.Reader
	order  binary.ByteOrder
	offset int64
	opts   Options
	text   textDecoder
}

// read fills buf. Running out of input is always io.ErrUnexpectedEOF here;
// only the case data may end cleanly.
func (d *decoder) read(buf []byte) error {
	n, err := io.ReadFull(d.r, buf)
	d.offset += int64(n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func (d *decoder) bytes(n int) ([]byte, error) {
	if n < 0 || n > maxRecordLength {
		return nil, fmt.Errorf("%w: record length %d", ErrInvalidFormat, n)
	}
	buf := make([]byte, n)
	if err := d.read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *decoder) int32() (int32, error) {
	var buf [4]byte
	if err := d.read(buf[:]); err != nil {
		return 0, err
	}
	return int32(d.order.Uint32(buf[:])), nil
}

func (d *decoder) float64() (float64, error) {
	var buf [8]byte
	if err := d.read(buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(d.order.Uint64(buf[:])), nil
}

func (d *decoder) skip(n int64) error {
	m, err := io.CopyN(io.Discard, d.r, n)
	d.offset += m
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// header is the fixed 176-byte file header.
type header struct {
	product     string
	caseSize    int32
	compression int32
	weightIndex int32
	ncases      int32
	bias        float64
	created     time.Time
	label       []byte
}

func (d *decoder) readHeader() (header, error) {
	var h header

	magic, err := d.bytes(4)
	if err != nil {
		return h, NewRecordError("header", d.offset, fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}
	switch string(magic) {
	case "$FL2":
	case "$FL3":
		return h, NewRecordError("header", 0, fmt.Errorf("%w: zlib (zsav)", ErrUnsupportedCompression))
	default:
		return h, NewRecordError("header", 0, fmt.Errorf("%w: bad magic %q", ErrInvalidFormat, magic))
	}

	product, err := d.bytes(60)
	if err != nil {
		return h, NewRecordError("header", d.offset, err)
	}
	h.product = string(product)

	// The layout code is 2 or 3 in the file's own byte order.
	layout, err := d.bytes(4)
	if err != nil {
		return h, NewRecordError("header", d.offset, err)
	}
	switch {
	case isLayoutCode(binary.LittleEndian.Uint32(layout)):
		d.order = binary.LittleEndian
	case isLayoutCode(binary.BigEndian.Uint32(layout)):
		d.order = binary.BigEndian
	default:
		return h, NewRecordError("header", d.offset-4, fmt.Errorf("%w: layout code % x", ErrInvalidFormat, layout))
	}

	fields := []*int32{&h.caseSize, &h.compression, &h.weightIndex, &h.ncases}
	for _, field := range fields {
		if *field, err = d.int32(); err != nil {
			return h, NewRecordError("header", d.offset, err)
		}
	}
	switch h.compression {
	case 0, 1:
	case 2:
		return h, NewRecordError("header", d.offset, fmt.Errorf("%w: zlib", ErrUnsupportedCompression))
	default:
		return h, NewRecordError("header", d.offset, fmt.Errorf("%w: code %d", ErrUnsupportedCompression, h.compression))
	}

	if h.bias, err = d.float64(); err != nil {
		return h, NewRecordError("header", d.offset, err)
	}

	stamp, err := d.bytes(17)
	if err != nil {
		return h, NewRecordError("header", d.offset, err)
	}
	h.created = parseCreated(string(stamp[:9]), string(stamp[9:]))

	if h.label, err = d.bytes(64); err != nil {
		return h, NewRecordError("header", d.offset, err)
	}

	// padding
	if err := d.skip(3); err != nil {
		return h, NewRecordError("header", d.offset, err)
	}

	return h, nil
}

func isLayoutCode(v uint32) bool {
	return v == 2 || v == 3
}

// parseCreated parses the "dd mmm yy" and "hh:mm:ss" header stamps.
func parseCreated(date, clock string) time.Time {
	t, err := time.Parse("02 Jan 06 15:04:05", date+" "+clock)
	if err != nil {
		return time.Time{}
	}
	return t
}

// numericValue converts a numeric case value for a variable.
func (d *decoder) numericValue(v *variable, f float64) any {
	if f == sysmis {
		return nil
	}
	if !d.opts.UserMissing && v.missing.Contains(f) {
		return nil
	}
	return v.format.kind().convert(f)
}

// convert turns a stored number into the value the column holds: a
// time.Time for date, time and datetime formats, the number otherwise.
func (k valueKind) convert(f float64) any {
	switch k {
	case kindDate:
		return calendarDate(f)
	case kindClock:
		return format.FromSeconds(f)
	case kindDatetime:
		return calendarInstant(f)
	}
	return f
}

// stringValue converts a string case value for a variable.
func (d *decoder) stringValue(v *variable, raw []byte) any {
	if len(raw) > v.width {
		raw = raw[:v.width]
	}
	s := d.text.string(raw)
	if !d.opts.UserMissing && v.missing.Contains(s) {
		return nil
	}
	return s
}

// calendarDate converts seconds since the Gregorian calendar origin to a date.
func calendarDate(sec float64) time.Time {
	days := math.Floor(sec / 86400)
	return calendarOrigin.AddDate(0, 0, int(days))
}

// calendarInstant converts seconds since the Gregorian calendar origin to a
// UTC time, rounded to the microsecond.
func calendarInstant(sec float64) time.Time {
	whole := math.Floor(sec)
	micros := math.Round((sec - whole) * 1e6)
	return time.Unix(calendarOrigin.Unix()+int64(whole), int64(micros)*int64(time.Microsecond)).UTC()
}
