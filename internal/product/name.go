package product

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Name is a normalized product name: trimmed, lower-cased, NFC-normalized,
// with inner whitespace runs collapsed to one space.
//
// The zero value is the empty name, which is never a valid list entry.
type Name string

// Normalize converts user input into a Name.
//
// NFC runs first so that composed and decomposed spellings of the same
// word (U+0439 vs U+0438 U+0306) compare equal after lowering.
func Normalize(raw string) Name {
	s := norm.NFC.String(raw)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// cases.Caser keeps internal state, so it is not shared between calls.
	return Name(cases.Lower(language.Und).String(s))
}

// IsEmpty reports whether n is the empty name.
func (n Name) IsEmpty() bool {
	return n == ""
}

// String returns the name as plain text.
func (n Name) String() string {
	return string(n)
}

// Names converts a slice of Name to plain strings.
func Names(ns []Name) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = string(n)
	}
	return out
}
