package tiff

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText converts the bytes of an ASCII field to a string. The field is
// 7-bit ASCII by the book, but writers commonly store UTF-8 or Latin-1 text;
// anything that is not valid UTF-8 is read as ISO-8859-1.
func decodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

func trimTrailingNulls(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return b
}
