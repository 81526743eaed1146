package engine

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/roach88/shoplist/internal/product"
)

const (
	// SuggestLimit is the maximum number of suggestions returned.
	SuggestLimit = 3

	// SuggestCutoff is the minimum similarity ratio for a suggestion.
	SuggestCutoff = 0.7

	// SearchLimit caps substring search results.
	SearchLimit = 15

	// BrowseLimit is the size of the default view for an empty query.
	BrowseLimit = 10
)

// Suggest returns up to SuggestLimit vocabulary names similar to raw,
// best match first. Similarity is the SequenceMatcher ratio over
// characters (2*M/T); names below SuggestCutoff are ignored. Equal ratios
// are ordered lexicographically.
//
// The result is a hint for the user to confirm, never an automatic merge.
func (e *Engine) Suggest(raw string) []product.Name {
	word := product.Normalize(raw)
	if word.IsEmpty() {
		return nil
	}

	e.mu.Lock()
	vocab := e.state.Vocabulary.Sorted()
	e.mu.Unlock()

	return closeMatches(word, vocab, SuggestLimit, SuggestCutoff)
}

type scored struct {
	name  product.Name
	ratio float64
}

// closeMatches mirrors difflib.get_close_matches: the cheap upper bounds
// are checked before the full ratio. Python's version returns equal ratios
// in descending string order; here they come out ascending.
func closeMatches(word product.Name, candidates []product.Name, n int, cutoff float64) []product.Name {
	target := chars(word)
	m := difflib.NewMatcher(target, target)

	var hits []scored
	for _, c := range candidates {
		m.SetSeq1(chars(c))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if r := m.Ratio(); r >= cutoff {
			hits = append(hits, scored{name: c, ratio: r})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].ratio != hits[j].ratio {
			return hits[i].ratio > hits[j].ratio
		}
		return hits[i].name < hits[j].name
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]product.Name, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// chars splits a name into its characters for the sequence matcher.
func chars(n product.Name) []string {
	return strings.Split(string(n), "")
}

// Search returns vocabulary names containing raw as a substring, sorted,
// at most SearchLimit. An empty query returns the first BrowseLimit names.
func (e *Engine) Search(raw string) []product.Name {
	q := product.Normalize(raw)

	e.mu.Lock()
	vocab := e.state.Vocabulary.Sorted()
	e.mu.Unlock()

	if q.IsEmpty() {
		if len(vocab) > BrowseLimit {
			vocab = vocab[:BrowseLimit]
		}
		return vocab
	}

	var out []product.Name
	for _, n := range vocab {
		if strings.Contains(string(n), string(q)) {
			out = append(out, n)
			if len(out) == SearchLimit {
				break
			}
		}
	}
	return out
}
