package savstruct

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ukaji3/savstruct-go/pkg/savstruct/frame"
	"github.com/ukaji3/savstruct-go/pkg/savstruct/models"
)

// DefaultFormatCode is used for columns the reader gives no format code.
const DefaultFormatCode = "F8.2"

// Reader reads a data file into a frame and its dictionary.
type Reader interface {
	Read(path string) (*frame.Frame, *models.Metadata, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(path string) (*frame.Frame, *models.Metadata, error)

// Read calls f(path).
func (f ReaderFunc) Read(path string) (*frame.Frame, *models.Metadata, error) {
	return f(path)
}

// Load reads the file at path. On failure it returns a *FileReadError and
// no File.
func Load(path string, opts Options) (*File, error) {
	fr, meta, err := opts.reader().Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return nil, NewFileReadError(path, err)
	}
	if fr == nil || meta == nil {
		return nil, NewFileReadError(path, errors.New("reader returned no data"))
	}

	f := &File{
		path:  path,
		frame: fr,
		meta:  meta,
		opts:  opts,
		index: make(map[string]*Column, len(meta.ColumnNames)),
	}

	for _, name := range meta.ColumnNames {
		series, ok := fr.Series(name)
		if !ok {
			return nil, NewFileReadError(path, fmt.Errorf("column %q has no data", name))
		}
		if _, dup := f.index[name]; dup {
			return nil, NewFileReadError(path, fmt.Errorf("duplicate column %q", name))
		}

		code, ok := meta.FormatCodes[name]
		if !ok || code == "" {
			code = DefaultFormatCode
		}

		col, err := NewColumn(series, name, meta.ColumnLabels[name], code, meta.ValueLabels[name])
		if err != nil {
			return nil, NewFileReadError(path, err)
		}

		f.columns = append(f.columns, col)
		f.index[name] = col
	}

	return f, nil
}
