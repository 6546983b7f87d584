package output

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ukaji3/savstruct-go/pkg/savstruct"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/format"
)

// Field metadata keys carrying the dictionary entry.
const (
	MetaLabel  = "label"
	MetaFormat = "format"
)

var timestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// ArrowType returns the arrow type a column of the given format maps to.
func ArrowType(spec format.Spec) arrow.DataType {
	switch {
	case spec.Type == format.TypeString:
		return arrow.BinaryTypes.String
	case spec.Type == format.TypeDatetime:
		return timestampType
	case spec.Type.IsDate():
		return arrow.FixedWidthTypes.Date32
	case spec.Type.IsTime():
		return arrow.FixedWidthTypes.Time64us
	}
	return arrow.PrimitiveTypes.Float64
}

// Schema returns the arrow schema of f.
func Schema(f *savstruct.File) *arrow.Schema {
	fields := make([]arrow.Field, 0, f.ColCount())
	for c := range f.Cols() {
		fields = append(fields, arrow.Field{
			Name:     c.Name(),
			Type:     ArrowType(c.Format()),
			Nullable: true,
			Metadata: arrow.NewMetadata(
				[]string{MetaLabel, MetaFormat},
				[]string{c.Label(), c.Format().Code},
			),
		})
	}
	return arrow.NewSchema(fields, nil)
}

// ToArrowRecord converts f to a single arrow record. The caller must
// release it.
func ToArrowRecord(f *savstruct.File, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	b := array.NewRecordBuilder(mem, Schema(f))
	defer b.Release()

	for i, c := range f.Columns() {
		fb := b.Field(i)
		fb.Reserve(c.Len())
		for row, v := range c.All() {
			if err := appendValue(fb, v); err != nil {
				return nil, fmt.Errorf("column %s, case %d: %w", c.Name(), row, err)
			}
		}
	}

	return b.NewRecord(), nil
}

// appendValue appends v to the builder of its column type.
func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch b := b.(type) {
	case *array.Float64Builder:
		if f, ok := format.ToFloat(v); ok {
			b.Append(f)
			return nil
		}
	case *array.StringBuilder:
		if s, ok := v.(string); ok {
			b.Append(s)
			return nil
		}
	case *array.Date32Builder:
		if t, ok := v.(time.Time); ok {
			b.Append(arrow.Date32FromTime(t))
			return nil
		}
	case *array.Time64Builder:
		switch t := v.(type) {
		case time.Time:
			b.Append(arrow.Time64(sinceMidnight(t) / time.Microsecond))
			return nil
		case time.Duration:
			b.Append(arrow.Time64(t / time.Microsecond))
			return nil
		}
	case *array.TimestampBuilder:
		switch t := v.(type) {
		case float64:
			b.Append(arrow.Timestamp(format.FromSeconds(t).UnixMicro()))
			return nil
		case time.Time:
			b.Append(arrow.Timestamp(t.UnixMicro()))
			return nil
		}
	}

	return fmt.Errorf("%w: %T", format.ErrValueType, v)
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
