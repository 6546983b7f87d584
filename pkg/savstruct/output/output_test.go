package output_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/savstruct-go/pkg/savstruct"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/format"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/frame"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/models"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/output"
)

var born = time.Date(2022, time.February, 22, 0, 0, 0, 0, time.UTC)

func sample(t *testing.T) *savstruct.File {
	t.Helper()
	reader := savstruct.ReaderFunc(func(string) (*frame.Frame, *models.Metadata, error) {
		fr, err := frame.New(
			frame.NewSeries("sex", []any{int16(1), 2.0, nil}),
			frame.NewSeries("name", []any{"Ada", "Bob", ""}),
			frame.NewSeries("born", []any{born, nil, born.AddDate(0, 0, 1)}),
			frame.NewSeries("alarm", []any{format.FromSeconds(50709), nil, format.FromSeconds(0)}),
			frame.NewSeries("seen", []any{90060.0, nil, 0.0}),
		)
		meta := models.NewMetadata()
		meta.FileLabel = "Survey"
		meta.Encoding = "UTF-8"
		meta.ColumnNames = []string{"sex", "name", "born", "alarm", "seen"}
		meta.ColumnLabels["sex"] = "Sex"
		meta.FormatCodes = map[string]string{
			"sex": "F1.0", "name": "A8", "born": "DATE11", "alarm": "TIME8", "seen": "DATETIME20",
		}
		meta.ValueLabels["sex"] = models.ValueLabels{{Value: 1.0, Label: "Male"}, {Value: 2.0, Label: "Female"}}
		meta.MissingValues["sex"] = models.MissingValues{Values: []any{9.0}}
		return fr, meta, err
	})

	f, err := savstruct.Load("/data/survey.sav", savstruct.Options{Reader: reader})
	require.NoError(t, err)
	return f
}

func TestToJSON(t *testing.T) {
	data, err := output.ToJSON(sample(t), false)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "survey.sav", doc["name"])
	assert.Equal(t, "Survey", doc["label"])
	assert.Equal(t, 3.0, doc["row_count"])
	assert.NotContains(t, doc, "created")

	vars := doc["variables"].([]any)
	require.Len(t, vars, 5)
	sex := vars[0].(map[string]any)
	assert.Equal(t, "sex", sex["name"])
	assert.Equal(t, "Sex", sex["label"])
	assert.Equal(t, "F1.0", sex["format"])
	assert.Len(t, sex["value_labels"], 2)
	assert.Contains(t, sex, "missing")
	assert.NotContains(t, vars[1].(map[string]any), "missing")

	cases := doc["cases"].([]any)
	require.Len(t, cases, 3)
	assert.Equal(t, []any{1.0, "Ada", "2022-02-22T00:00:00Z", "1582-01-01T14:05:09Z", 90060.0}, cases[0])

	pretty, err := output.ToJSON(sample(t), true)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  \"name\": \"survey.sav\"")
}

func TestArrowType(t *testing.T) {
	tests := []struct {
		code     string
		expected arrow.DataType
	}{
		{"F8.2", arrow.PrimitiveTypes.Float64},
		{"PCT5.1", arrow.PrimitiveTypes.Float64},
		{"WKDAY3", arrow.PrimitiveTypes.Float64},
		{"A10", arrow.BinaryTypes.String},
		{"DATE11", arrow.FixedWidthTypes.Date32},
		{"ADATE10", arrow.FixedWidthTypes.Date32},
		{"TIME8", arrow.FixedWidthTypes.Time64us},
		{"DATETIME20", &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}},
	}

	for _, tt := range tests {
		got := output.ArrowType(format.MustParse(tt.code))
		if !arrow.TypeEqual(got, tt.expected) {
			t.Errorf("ArrowType(%q) = %v, expected %v", tt.code, got, tt.expected)
		}
	}
}

func TestToArrowRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec, err := output.ToArrowRecord(sample(t), mem)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, int64(5), rec.NumCols())

	field := rec.Schema().Field(0)
	label, _ := field.Metadata.GetValue(output.MetaLabel)
	code, _ := field.Metadata.GetValue(output.MetaFormat)
	assert.Equal(t, "Sex", label)
	assert.Equal(t, "F1.0", code)

	sex := rec.Column(0).(*array.Float64)
	assert.Equal(t, 2.0, sex.Value(1))
	assert.Equal(t, 1.0, sex.Value(0))
	assert.True(t, sex.IsNull(2))

	assert.Equal(t, "Ada", rec.Column(1).(*array.String).Value(0))
	assert.Equal(t, arrow.Date32FromTime(born), rec.Column(2).(*array.Date32).Value(0))
	assert.Equal(t, arrow.Time64(50709*1_000_000), rec.Column(3).(*array.Time64).Value(0))

	seen := rec.Column(4).(*array.Timestamp)
	assert.Equal(t, arrow.Timestamp(format.FromSeconds(90060).UnixMicro()), seen.Value(0))
	assert.True(t, seen.IsNull(1))
}

func TestToArrowRecordValueType(t *testing.T) {
	f := sample(t)
	sex, _ := f.Column("sex")
	require.NoError(t, sex.Set(0, "one"))

	_, err := output.ToArrowRecord(f, nil)
	assert.ErrorIs(t, err, format.ErrValueType)
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.parquet")
	require.NoError(t, output.WriteParquet(sample(t), path))

	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()

	table, err := pqarrow.ReadTable(context.Background(), in,
		parquet.NewReaderProperties(memory.DefaultAllocator), pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(3), table.NumRows())
	assert.Equal(t, int64(5), table.NumCols())
	assert.Equal(t, "born", table.Schema().Field(2).Name)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	require.NoError(t, output.WriteXLSX(sample(t), path, true))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{output.DataSheet, output.VariablesSheet}, wb.GetSheetList())

	rows, err := wb.GetRows(output.DataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"sex", "name", "born", "alarm", "seen"}, rows[0])
	assert.Equal(t, []string{"Female"}, rows[2][:1])
	assert.Equal(t, []string{"Ada", "22-Feb-2022", "14:05:09", "02-Jan-1582 01:01:00"}, rows[1][1:])

	vars, err := wb.GetRows(output.VariablesSheet)
	require.NoError(t, err)
	require.Len(t, vars, 6)
	assert.Equal(t, []string{"sex", "Sex", "F1.0", `1="Male"; 2="Female"`}, vars[1])

	// Without labels numbers stay numeric.
	raw := filepath.Join(t.TempDir(), "raw.xlsx")
	require.NoError(t, output.WriteXLSX(sample(t), raw, false))
	wb2, err := excelize.OpenFile(raw)
	require.NoError(t, err)
	defer wb2.Close()
	v, err := wb2.GetCellValue(output.DataSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}
