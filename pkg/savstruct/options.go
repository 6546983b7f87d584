// Package savstruct exposes SPSS .sav files as columns with SPSS-style
// display formatting.
package savstruct

import "github.com/ukaji3/savstruct-go/pkg/savstruct/parser"

// DefaultPreviewRows is the number of rows shown per column in file previews.
const DefaultPreviewRows = 10

// Options configures loading and display.
type Options struct {
	// ValueLabels specifies whether previews show value labels instead of raw values.
	// If nil, defaults to true.
	ValueLabels *bool
	// PreviewRows is the number of rows per column in file previews.
	// If zero, defaults to DefaultPreviewRows.
	PreviewRows int
	// Encoding overrides the character set declared in the file.
	Encoding string
	// UserMissing keeps user-missing values instead of treating them as missing.
	UserMissing bool
	// Reader reads the file. If nil, the .sav decoder is used.
	Reader Reader
}

// DefaultOptions returns default load options.
func DefaultOptions() Options {
	return Options{
		PreviewRows: DefaultPreviewRows,
	}
}

// ShouldUseValueLabels returns whether previews substitute value labels.
func (o Options) ShouldUseValueLabels() bool {
	if o.ValueLabels != nil {
		return *o.ValueLabels
	}
	return true
}

// Rows returns the number of preview rows per column.
func (o Options) Rows() int {
	if o.PreviewRows > 0 {
		return o.PreviewRows
	}
	return DefaultPreviewRows
}

func (o Options) reader() Reader {
	if o.Reader != nil {
		return o.Reader
	}
	return parser.NewSavReader(parser.Options{
		Encoding:    o.Encoding,
		UserMissing: o.UserMissing,
	})
}
