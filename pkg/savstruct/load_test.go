package savstruct_test

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/savstruct-go/internal/savtest"
	"github.com/ukaji3/savstruct-go/pkg/savstruct"
)

func writeSurvey(t *testing.T) string {
	t.Helper()
	born := time.Date(2022, time.February, 22, 0, 0, 0, 0, time.UTC)
	f := &savtest.File{
		Label:      "Customer survey",
		Compressed: true,
		Variables: []savtest.Variable{
			{Name: "GENDER", Label: "Gender", Format: "F1.0", ValueLabels: []savtest.Label{
				{Value: 1.0, Label: "Male"},
				{Value: 2.0, Label: "Female"},
			}},
			{Name: "SCORE", Format: "PCT5.1", Missing: []any{999.0}},
			{Name: "SEEN", Format: "DATETIME20"},
			{Name: "BORN", Format: "DATE11"},
			{Name: "ALARM", Format: "TIME8"},
			{Name: "respondent_name", Width: 12},
		},
		Rows: [][]any{
			{2, 12.5, 90060.0, savtest.DateSeconds(born), 50709.0, "Ada Lovelace"},
			{1, 999, nil, nil, nil, "Bob"},
		},
	}

	path := filepath.Join(t.TempDir(), "survey.sav")
	require.NoError(t, f.Write(path))
	return path
}

func TestLoadSav(t *testing.T) {
	f, err := savstruct.Load(writeSurvey(t), savstruct.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, f.RowCount())
	assert.Equal(t, 6, f.ColCount())
	assert.Equal(t, "Customer survey", f.Metadata().FileLabel)

	tests := []struct {
		column   string
		row      int
		expected string
	}{
		{"GENDER", 0, "Female"},
		{"GENDER", 1, "Male"},
		{"SCORE", 0, " 12.5%"},
		{"SCORE", 1, "    ."},
		{"SEEN", 0, "15-Oct-1582 01:01:00"},
		{"SEEN", 1, "                   ."},
		{"BORN", 0, "22-Feb-2022"},
		{"ALARM", 0, "14:05:09"},
		{"respondent_name", 0, "Ada Lovelace"},
		{"respondent_name", 1, "         Bob"},
	}

	for _, tt := range tests {
		c, ok := f.Column(tt.column)
		require.True(t, ok, tt.column)
		got, err := c.Labelled(tt.row)
		require.NoError(t, err)
		if got != tt.expected {
			t.Errorf("%s.Labelled(%d) = %q, expected %q", tt.column, tt.row, got, tt.expected)
		}
	}

	_, err = f.Display()
	assert.NoError(t, err)
}

func TestLoadDatetimeMatchesDate(t *testing.T) {
	stamp := time.Date(2022, time.February, 22, 14, 5, 0, 0, time.UTC)
	sf := &savtest.File{
		Variables: []savtest.Variable{
			{Name: "SEEN", Format: "DATETIME17"},
			{Name: "BORN", Format: "DATE11"},
		},
		Rows: [][]any{{savtest.DateSeconds(stamp), savtest.DateSeconds(stamp)}},
	}
	path := filepath.Join(t.TempDir(), "stamp.sav")
	require.NoError(t, sf.Write(path))

	f, err := savstruct.Load(path, savstruct.DefaultOptions())
	require.NoError(t, err)

	seen, _ := f.Column("SEEN")
	got, err := seen.Labelled(0)
	require.NoError(t, err)
	assert.Equal(t, "22-Feb-2022 14:05", got)

	born, _ := f.Column("BORN")
	got, err = born.Labelled(0)
	require.NoError(t, err)
	assert.Equal(t, "22-Feb-2022", got)
}

func TestLoadMalformedFile(t *testing.T) {
	valid, err := (&savtest.File{Variables: []savtest.Variable{{Name: "X"}}}).Bytes()
	require.NoError(t, err)

	// A long names extension claiming an impossible length.
	data := append([]byte(nil), valid[:176]...)
	for _, field := range []uint32{7, 13, 0x7fffffff, 0x7fffffff} {
		data = binary.LittleEndian.AppendUint32(data, field)
	}
	path := filepath.Join(t.TempDir(), "hostile.sav")
	require.NoError(t, os.WriteFile(path, data, 0644))

	f, err := savstruct.Load(path, savstruct.DefaultOptions())
	assert.Nil(t, f)
	assert.ErrorIs(t, err, savstruct.ErrInvalidFormat)

	var readErr *savstruct.FileReadError
	assert.True(t, errors.As(err, &readErr))
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sav")
	f, err := savstruct.Load(path, savstruct.DefaultOptions())
	assert.Nil(t, f)
	assert.ErrorIs(t, err, savstruct.ErrFileNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var readErr *savstruct.FileReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, path, readErr.Path)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.sav")
	require.NoError(t, os.WriteFile(path, []byte("not a system file at all"), 0644))

	_, err := savstruct.Load(path, savstruct.DefaultOptions())
	assert.ErrorIs(t, err, savstruct.ErrInvalidFormat)
}
