package store

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateForTransport(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		prefix string
		want   string
	}{
		{"fits unchanged", "товар", "add_similar:", "товар"},
		{"ascii cut at budget", strings.Repeat("a", 70), "p:", strings.Repeat("a", 62)},
		// 52 bytes of budget hold 26 two-byte letters exactly.
		{"cyrillic cut on boundary", strings.Repeat("ж", 40), "add_similar:", strings.Repeat("ж", 26)},
		// 51 bytes of budget: the 26th letter would be split, so it is dropped.
		{"cyrillic partial dropped", strings.Repeat("ж", 40), "force_add:abc", strings.Repeat("ж", 25)},
		{"emoji partial dropped", strings.Repeat("🍎", 20), "pick:", strings.Repeat("🍎", 14)},
		{"budget below one char falls back to first char", "🍎🍏", strings.Repeat("x", 62), "🍎"},
		{"empty text", "", "done", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateForTransport(tt.text, tt.prefix)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncateForTransport_RespectsCeiling(t *testing.T) {
	prefixes := []string{"add_similar:", "force_add:", "pick:", "inline:", "new:"}
	texts := []string{
		"товар",
		strings.Repeat("молоко ", 20),
		strings.Repeat("日本", 30),
		strings.Repeat("a🍎b", 25),
	}

	for _, p := range prefixes {
		for _, text := range texts {
			got := TruncateForTransport(text, p)
			assert.LessOrEqual(t, len(p)+len(got), MaxTransportBytes, "prefix %q text %q", p, text)
			assert.True(t, utf8.ValidString(got))
			assert.True(t, strings.HasPrefix(text, got), "result must be a prefix of the input")
		}
	}
}
