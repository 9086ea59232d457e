package marc

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const replacementChar = "\uFFFD"

// decodeText turns field bytes into a string. Unicode records must hold valid
// UTF-8; invalid sequences are replaced. Records flagged as MARC-8 are passed
// through when they are plain ASCII or already valid UTF-8, and otherwise read
// as ISO-8859-1, which keeps the common Latin letters but loses MARC-8
// combining diacritics.
// A non-empty message describes what was done to the value.
func decodeText(b []byte, unicode bool) (string, string) {
	if isASCII(b) {
		return string(b), ""
	}

	if unicode || utf8.Valid(b) {
		if utf8.Valid(b) {
			return string(b), ""
		}
		return strings.ToValidUTF8(string(b), replacementChar), "invalid UTF-8 replaced"
	}

	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), replacementChar), "undecodable MARC-8 bytes replaced"
	}
	return string(s), "MARC-8 value decoded as ISO-8859-1"
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
