package util

import (
	"golang.org/x/text/unicode/norm"
)

// FixUnicode brings a string into NFC so that the same password typed on
// different systems produces the same bytes.
func FixUnicode(in string) string {
	return norm.NFC.String(in)
}
