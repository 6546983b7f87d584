// Package models defines the dictionary metadata read from a system file.
package models

import "time"

// Metadata represents the dictionary of a data file.
type Metadata struct {
	// FileLabel is the label stored in the file header.
	FileLabel string `json:"file_label,omitempty"`
	// Encoding is the character set the text was decoded from.
	Encoding string `json:"encoding,omitempty"`
	// Created is the creation timestamp from the file header (zero if unparseable).
	Created time.Time `json:"created,omitempty"`
	// RowCount is the number of cases.
	RowCount int `json:"row_count"`
	// Compressed reports whether case data was bytecode compressed.
	Compressed bool `json:"compressed"`
	// ColumnNames lists variable names in dictionary order.
	ColumnNames []string `json:"column_names"`
	// ColumnLabels maps variable name to its label, when it has one.
	ColumnLabels map[string]string `json:"column_labels,omitempty"`
	// FormatCodes maps variable name to its print format code (e.g. F8.2).
	FormatCodes map[string]string `json:"format_codes,omitempty"`
	// ValueLabels maps variable name to its value labels, when it has any.
	ValueLabels map[string]ValueLabels `json:"value_labels,omitempty"`
	// MissingValues maps variable name to its user-missing values.
	MissingValues map[string]MissingValues `json:"missing_values,omitempty"`
	// Notes holds the lines of the document record.
	Notes []string `json:"notes,omitempty"`
}

// NewMetadata returns Metadata with its maps allocated.
func NewMetadata() *Metadata {
	return &Metadata{
		ColumnLabels:  make(map[string]string),
		FormatCodes:   make(map[string]string),
		ValueLabels:   make(map[string]ValueLabels),
		MissingValues: make(map[string]MissingValues),
	}
}

// MissingValues describes the user-missing values of one variable.
type MissingValues struct {
	// Values are discrete missing values (float64 or string).
	Values []any `json:"values,omitempty"`
	// Range is an inclusive [low, high] missing range (nil if absent).
	Range []float64 `json:"range,omitempty"`
}

// Contains reports whether v is user-missing.
func (m MissingValues) Contains(v any) bool {
	for _, mv := range m.Values {
		if Equal(mv, v) {
			return true
		}
	}
	if len(m.Range) == 2 {
		if f, ok := number(v); ok {
			return f >= m.Range[0] && f <= m.Range[1]
		}
	}
	return false
}
