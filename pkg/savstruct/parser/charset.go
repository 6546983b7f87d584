package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// codePages maps the character code of the machine integer record to a
// charset name, for files without an encoding record.
var codePages = map[int32]string{
	1252:  "windows-1252",
	1250:  "windows-1250",
	1251:  "windows-1251",
	20127: "US-ASCII",
	28591: "ISO-8859-1",
	28605: "ISO-8859-15",
	65001: "UTF-8",
}

// textDecoder converts file bytes to trimmed UTF-8 strings.
type textDecoder struct {
	name string
	dec  *encoding.Decoder // nil means the bytes are already UTF-8
}

// newTextDecoder returns a decoder for the named charset. An empty name
// means UTF-8.
func newTextDecoder(name string) (textDecoder, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTF-8") || strings.EqualFold(name, "UTF8") {
		return textDecoder{name: "UTF-8"}, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		enc, err = ianaindex.IANA.Encoding(name)
	}
	if err != nil || enc == nil {
		return textDecoder{}, fmt.Errorf("unknown character encoding %q", name)
	}

	return textDecoder{name: name, dec: enc.NewDecoder()}, nil
}

// string decodes b, dropping trailing spaces and NULs.
func (t textDecoder) string(b []byte) string {
	s := string(b)
	if t.dec != nil {
		if out, err := t.dec.String(s); err == nil {
			s = out
		}
	} else if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	return strings.TrimRight(s, " \x00")
}
