// Package output writes loaded files as JSON, XLSX workbooks, Arrow tables
// and Parquet files.
package output

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/ukaji3/savstruct-go/pkg/savstruct"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/models"
)

// Document is the JSON form of a file: its dictionary and raw cases.
type Document struct {
	// Name is the base name of the file.
	Name string `json:"name"`
	// Label is the file label.
	Label string `json:"label,omitempty"`
	// Encoding is the character set text was decoded with.
	Encoding string `json:"encoding,omitempty"`
	// Created is the creation time stamped in the file.
	Created *time.Time `json:"created,omitempty"`
	// RowCount is the number of cases.
	RowCount int `json:"row_count"`
	// Variables describes the columns in file order.
	Variables []Variable `json:"variables"`
	// Notes holds the document lines.
	Notes []string `json:"notes,omitempty"`
	// Cases holds the raw values, one array per case in column order.
	Cases [][]any `json:"cases"`
}

// Variable is the dictionary entry of one column.
type Variable struct {
	Name        string                `json:"name"`
	Label       string                `json:"label,omitempty"`
	Format      string                `json:"format"`
	ValueLabels models.ValueLabels    `json:"value_labels,omitempty"`
	Missing     *models.MissingValues `json:"missing,omitempty"`
}

// NewDocument builds the JSON form of f.
func NewDocument(f *savstruct.File) *Document {
	meta := f.Metadata()
	doc := &Document{
		Name:     filepath.Base(f.Path()),
		Label:    meta.FileLabel,
		Encoding: meta.Encoding,
		RowCount: f.RowCount(),
		Notes:    meta.Notes,
		Cases:    make([][]any, 0, f.RowCount()),
	}
	if !meta.Created.IsZero() {
		created := meta.Created
		doc.Created = &created
	}

	for c := range f.Cols() {
		v := Variable{
			Name:        c.Name(),
			Label:       c.Label(),
			Format:      c.Format().Code,
			ValueLabels: c.ValueLabels(),
		}
		if m, ok := meta.MissingValues[c.Name()]; ok {
			v.Missing = &m
		}
		doc.Variables = append(doc.Variables, v)
	}

	for _, row := range f.Rows() {
		doc.Cases = append(doc.Cases, row.Values())
	}

	return doc
}

// ToJSON serializes f to JSON.
func ToJSON(f *savstruct.File, pretty bool) ([]byte, error) {
	doc := NewDocument(f)
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}
