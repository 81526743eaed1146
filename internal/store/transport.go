package store

import (
	"strings"
	"unicode/utf8"
)

// MaxTransportBytes is the gateway's ceiling for opaque identifiers
// (Telegram callback data and inline result ids).
const MaxTransportBytes = 64

// TruncateForTransport shortens text so that prefix+text fits in
// MaxTransportBytes of UTF-8.
//
// The cut never splits a multi-byte character: a trailing partial sequence
// is dropped, as is any other byte that does not decode. When not even one
// character fits, the first character of text is returned.
func TruncateForTransport(text, prefix string) string {
	budget := MaxTransportBytes - len(prefix)
	if len(text) <= budget {
		return text
	}
	if budget < 0 {
		budget = 0
	}

	b := []byte(text)[:budget]
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			b = b[1:]
			continue
		}
		sb.Write(b[:size])
		b = b[size:]
	}

	if sb.Len() == 0 {
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && size <= 1 {
			return ""
		}
		return text[:size]
	}
	return sb.String()
}
