package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/ukaji3/savstruct-go/pkg/savstruct/models"
)

// Dictionary record types.
const (
	recVariable    = 2
	recValueLabels = 3
	recLabelVars   = 4
	recDocument    = 6
	recExtension   = 7
	recEnd         = 999
)

// Extension record subtypes the decoder interprets.
const (
	extIntegerInfo = 3
	extLongNames   = 13
	extEncoding    = 20
)

// documentLineLength is the fixed width of document record lines.
const documentLineLength = 80

// variable is one variable of the dictionary (continuation records folded in).
type variable struct {
	shortName []byte
	longName  string
	width     int // 0 for numeric variables
	slots     int // 8-byte slots per case
	index     int // 1-based position among variable records
	label     []byte
	hasLabel  bool
	format    printFormat
	rawMiss   [][]byte
	missRange bool
	missing   models.MissingValues
	labels    models.ValueLabels
}

func (v *variable) isString() bool {
	return v.width > 0
}

// labelSet is a value label record before its variables are resolved.
type labelSet struct {
	offset  int64
	entries []rawLabel
	indices []int32
}

type rawLabel struct {
	value [8]byte
	label []byte
}

// dictionary holds the decoded dictionary records.
type dictionary struct {
	vars      []*variable
	byIndex   map[int]*variable
	labelSets []labelSet
	documents [][]byte
	longNames []byte
	encoding  string
	codePage  int32
}

func (d *decoder) readDictionary() (*dictionary, error) {
	dict := &dictionary{byIndex: make(map[int]*variable)}
	position := 0

	for {
		start := d.offset
		recType, err := d.int32()
		if err != nil {
			return nil, NewRecordError("dictionary", start, err)
		}

		switch recType {
		case recVariable:
			position++
			if err := d.readVariable(dict, position); err != nil {
				return nil, NewRecordError("variable", start, err)
			}

		case recValueLabels:
			set, err := d.readValueLabels()
			if err != nil {
				return nil, NewRecordError("value labels", start, err)
			}
			set.offset = start
			dict.labelSets = append(dict.labelSets, set)

		case recDocument:
			lines, err := d.readDocument()
			if err != nil {
				return nil, NewRecordError("document", start, err)
			}
			dict.documents = append(dict.documents, lines...)

		case recExtension:
			if err := d.readExtension(dict); err != nil {
				return nil, NewRecordError("extension", start, err)
			}

		case recEnd:
			// filler
			if _, err := d.int32(); err != nil {
				return nil, NewRecordError("dictionary termination", start, err)
			}
			if len(dict.vars) == 0 {
				return nil, NewRecordError("dictionary", start, fmt.Errorf("%w: no variables", ErrInvalidFormat))
			}
			return dict, nil

		default:
			return nil, NewRecordError("dictionary", start, fmt.Errorf("%w: unknown record type %d", ErrInvalidFormat, recType))
		}
	}
}

func (d *decoder) readVariable(dict *dictionary, position int) error {
	var fields [5]int32
	for i := range fields {
		v, err := d.int32()
		if err != nil {
			return err
		}
		fields[i] = v
	}
	typ, hasLabel, nMissing, printFmt := fields[0], fields[1], fields[2], fields[3]

	name, err := d.bytes(8)
	if err != nil {
		return err
	}

	// Continuation records extend the previous string variable by one slot.
	if typ == -1 {
		if len(dict.vars) == 0 || !dict.vars[len(dict.vars)-1].isString() {
			return fmt.Errorf("%w: continuation record without a string variable", ErrInvalidFormat)
		}
		dict.vars[len(dict.vars)-1].slots++
		return nil
	}
	if typ < 0 || typ > 255 {
		return fmt.Errorf("%w: variable type %d", ErrInvalidFormat, typ)
	}

	v := &variable{
		shortName: name,
		width:     int(typ),
		slots:     1,
		index:     position,
		format:    unpackFormat(printFmt),
	}

	if hasLabel == 1 {
		n, err := d.int32()
		if err != nil {
			return err
		}
		if n < 0 || n > maxRecordLength {
			return fmt.Errorf("%w: label length %d", ErrInvalidFormat, n)
		}
		label, err := d.bytes(int(roundUp(n, 4)))
		if err != nil {
			return err
		}
		v.label = label[:n]
		v.hasLabel = true
	}

	if nMissing != 0 {
		count := int(nMissing)
		if count < 0 {
			// -2 is a range, -3 a range plus one discrete value
			v.missRange = true
			count = -count
		}
		if count > 3 {
			return fmt.Errorf("%w: %d missing values", ErrInvalidFormat, nMissing)
		}
		for range count {
			raw, err := d.bytes(8)
			if err != nil {
				return err
			}
			v.rawMiss = append(v.rawMiss, raw)
		}
	}

	dict.vars = append(dict.vars, v)
	dict.byIndex[position] = v
	return nil
}

func (d *decoder) readValueLabels() (labelSet, error) {
	var set labelSet

	count, err := d.int32()
	if err != nil {
		return set, err
	}
	if count < 0 {
		return set, fmt.Errorf("%w: %d value labels", ErrInvalidFormat, count)
	}

	for range count {
		var l rawLabel
		if err := d.read(l.value[:]); err != nil {
			return set, err
		}
		n, err := d.bytes(1)
		if err != nil {
			return set, err
		}
		// The length byte plus label are padded to a multiple of 8.
		label, err := d.bytes(int(roundUp(int32(n[0])+1, 8)) - 1)
		if err != nil {
			return set, err
		}
		l.label = label[:n[0]]
		set.entries = append(set.entries, l)
	}

	// A variable index record must follow.
	recType, err := d.int32()
	if err != nil {
		return set, err
	}
	if recType != recLabelVars {
		return set, fmt.Errorf("%w: value labels followed by record type %d", ErrInvalidFormat, recType)
	}
	nvars, err := d.int32()
	if err != nil {
		return set, err
	}
	if nvars < 0 {
		return set, fmt.Errorf("%w: %d labelled variables", ErrInvalidFormat, nvars)
	}
	for range nvars {
		idx, err := d.int32()
		if err != nil {
			return set, err
		}
		set.indices = append(set.indices, idx)
	}

	return set, nil
}

func (d *decoder) readDocument() ([][]byte, error) {
	n, err := d.int32()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > maxRecordLength/documentLineLength {
		return nil, fmt.Errorf("%w: %d document lines", ErrInvalidFormat, n)
	}

	lines := make([][]byte, 0, n)
	for range n {
		line, err := d.bytes(documentLineLength)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (d *decoder) readExtension(dict *dictionary) error {
	var fields [3]int32
	for i := range fields {
		v, err := d.int32()
		if err != nil {
			return err
		}
		fields[i] = v
	}
	subtype, size, count := fields[0], fields[1], fields[2]
	if size < 0 || count < 0 {
		return fmt.Errorf("%w: extension %d size %d count %d", ErrInvalidFormat, subtype, size, count)
	}
	length := int64(size) * int64(count)

	// Unknown subtypes are skipped without buffering; the others are read
	// whole and must fit a record.
	switch subtype {
	case extLongNames, extEncoding:
		if length > maxRecordLength {
			return fmt.Errorf("%w: extension %d length %d", ErrInvalidFormat, subtype, length)
		}
	}

	switch subtype {
	case extLongNames:
		data, err := d.bytes(int(length))
		if err != nil {
			return err
		}
		dict.longNames = data

	case extEncoding:
		data, err := d.bytes(int(length))
		if err != nil {
			return err
		}
		dict.encoding = strings.TrimSpace(string(data))

	case extIntegerInfo:
		if size != 4 || count != 8 {
			return d.skip(length)
		}
		var info [8]int32
		for i := range info {
			v, err := d.int32()
			if err != nil {
				return err
			}
			info[i] = v
		}
		dict.codePage = info[7]

	default:
		return d.skip(length)
	}

	return nil
}

// buildMetadata resolves text, long names, missing values and value labels.
func (d *decoder) buildMetadata(h header, dict *dictionary) (*models.Metadata, error) {
	charset := d.opts.Encoding
	if charset == "" {
		charset = dict.encoding
	}
	if charset == "" {
		charset = codePages[dict.codePage]
	}
	text, err := newTextDecoder(charset)
	if err != nil {
		return nil, NewRecordError("extension", 0, err)
	}
	d.text = text

	meta := models.NewMetadata()
	meta.FileLabel = text.string(h.label)
	meta.Encoding = text.name
	meta.Created = h.created
	meta.Compressed = h.compression == 1

	long := parseLongNames(text.string(dict.longNames))
	for _, v := range dict.vars {
		short := text.string(v.shortName)
		v.longName = short
		if name, ok := long[strings.ToUpper(short)]; ok {
			v.longName = name
		}

		meta.ColumnNames = append(meta.ColumnNames, v.longName)
		meta.FormatCodes[v.longName] = v.format.code()
		if v.hasLabel {
			meta.ColumnLabels[v.longName] = text.string(v.label)
		}

		v.missing = d.missingValues(v)
		if len(v.missing.Values) > 0 || len(v.missing.Range) > 0 {
			meta.MissingValues[v.longName] = v.missing
		}
	}

	for _, set := range dict.labelSets {
		for _, idx := range set.indices {
			v, ok := dict.byIndex[int(idx)]
			if !ok {
				return nil, NewRecordError("value labels", set.offset, fmt.Errorf("%w: no variable at index %d", ErrInvalidFormat, idx))
			}
			for _, e := range set.entries {
				v.labels = append(v.labels, models.ValueLabel{
					Value: d.labelValue(v, e.value),
					Label: text.string(e.label),
				})
			}
		}
	}
	for _, v := range dict.vars {
		if len(v.labels) > 0 {
			meta.ValueLabels[v.longName] = v.labels
		}
	}

	for _, line := range dict.documents {
		meta.Notes = append(meta.Notes, text.string(line))
	}

	return meta, nil
}

// missingValues decodes the raw missing value slots of a variable.
func (d *decoder) missingValues(v *variable) models.MissingValues {
	var m models.MissingValues
	raw := v.rawMiss

	if v.isString() {
		for _, b := range raw {
			m.Values = append(m.Values, d.text.string(b))
		}
		return m
	}

	if v.missRange && len(raw) >= 2 {
		m.Range = []float64{d.slotFloat(raw[0]), d.slotFloat(raw[1])}
		raw = raw[2:]
	}
	for _, b := range raw {
		m.Values = append(m.Values, d.slotFloat(b))
	}
	return m
}

func (d *decoder) labelValue(v *variable, raw [8]byte) any {
	if v.isString() {
		return d.text.string(raw[:])
	}
	return v.format.kind().convert(d.slotFloat(raw[:]))
}

func (d *decoder) slotFloat(b []byte) float64 {
	return math.Float64frombits(d.order.Uint64(b))
}

// parseLongNames parses "SHORT=LongName" pairs separated by tabs.
func parseLongNames(s string) map[string]string {
	names := make(map[string]string)
	for _, pair := range strings.Split(s, "\t") {
		short, long, ok := strings.Cut(pair, "=")
		if !ok || short == "" || long == "" {
			continue
		}
		names[strings.ToUpper(short)] = long
	}
	return names
}

func roundUp(n, multiple int32) int32 {
	return (n + multiple - 1) / multiple * multiple
}
