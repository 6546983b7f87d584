package output

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/savstruct-go/pkg/savstruct"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/format"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/models"
)

// Sheet names of exported workbooks.
const (
	DataSheet      = "Data"
	VariablesSheet = "Variables"
)

// WriteXLSX writes f to a workbook with a Data sheet of cases and a
// Variables sheet describing the columns. Numeric cells are written as
// numbers unless valueLabels substitutes a label; other cells hold the
// rendered value.
func WriteXLSX(f *savstruct.File, path string, valueLabels bool) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", DataSheet); err != nil {
		return err
	}
	if _, err := wb.NewSheet(VariablesSheet); err != nil {
		return err
	}

	columns := f.Columns()

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.Name()
	}
	if err := setRow(wb, DataSheet, 1, header); err != nil {
		return err
	}

	for i, row := range f.Rows() {
		values := make([]any, len(columns))
		for j, c := range columns {
			v, _ := c.Get(row.Index())
			cell, err := xlsxValue(c, v, valueLabels)
			if err != nil {
				return fmt.Errorf("column %s, case %d: %w", c.Name(), i, err)
			}
			values[j] = cell
		}
		if err := setRow(wb, DataSheet, i+2, values); err != nil {
			return err
		}
	}

	if err := setRow(wb, VariablesSheet, 1, []any{"Name", "Label", "Format", "Value labels"}); err != nil {
		return err
	}
	for i, c := range columns {
		if err := setRow(wb, VariablesSheet, i+2, []any{c.Name(), c.Label(), c.Format().Code, labelList(c.ValueLabels())}); err != nil {
			return err
		}
	}

	if err := wb.SetPanes(DataSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return wb.SaveAs(path)
}

func setRow(wb *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return wb.SetSheetRow(sheet, cell, &values)
}

// xlsxValue returns the cell content for v.
func xlsxValue(c *savstruct.Column, v any, valueLabels bool) (any, error) {
	if v == nil {
		return nil, nil
	}
	if valueLabels {
		if label, ok := c.ValueLabels().Lookup(v); ok {
			return label, nil
		}
	}
	if f, ok := format.ToFloat(v); ok && c.Format().Type.IsNumeric() {
		return f, nil
	}
	s, err := format.Render(c.Format(), v)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

// labelList joins value labels as `1="Male"; 2="Female"`.
func labelList(labels models.ValueLabels) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s=%q", models.FormatValue(l.Value), l.Label)
	}
	return strings.Join(parts, "; ")
}
