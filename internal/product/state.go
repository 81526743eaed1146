package product

import (
	"slices"
	"sort"
	"strconv"
)

// Scope addresses one shopping list: a user identifier or SharedScope.
type Scope string

// SharedScope is the key of the single list shared by every user.
const SharedScope Scope = "shared"

// UserScope returns the scope of a per-user list.
func UserScope(userID int64) Scope {
	return Scope(strconv.FormatInt(userID, 10))
}

// List is an ordered shopping list. Insertion order is preserved.
type List []Name

// Contains reports whether name is already on the list.
func (l List) Contains(name Name) bool {
	return slices.Contains(l, name)
}

// Clone returns an independent copy of the list.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Vocabulary is the set of every product name ever added.
type Vocabulary map[Name]struct{}

// NewVocabulary builds a vocabulary from the given names, skipping empty ones.
func NewVocabulary(names ...Name) Vocabulary {
	v := make(Vocabulary, len(names))
	for _, n := range names {
		v.Add(n)
	}
	return v
}

// Add inserts name and reports whether it was new.
func (v Vocabulary) Add(name Name) bool {
	if name.IsEmpty() {
		return false
	}
	if _, ok := v[name]; ok {
		return false
	}
	v[name] = struct{}{}
	return true
}

// Has reports whether name is known.
func (v Vocabulary) Has(name Name) bool {
	_, ok := v[name]
	return ok
}

// Sorted returns the vocabulary in lexicographic order.
func (v Vocabulary) Sorted() []Name {
	out := make([]Name, 0, len(v))
	for n := range v {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy of the vocabulary.
func (v Vocabulary) Clone() Vocabulary {
	out := make(Vocabulary, len(v))
	for n := range v {
		out[n] = struct{}{}
	}
	return out
}

// State is the complete in-memory shopping state: one list per scope plus
// the shared vocabulary.
//
// Operations that may fail to persist work on a Clone and swap it in only
// after a successful save.
type State struct {
	Lists      map[Scope]List
	Vocabulary Vocabulary
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		Lists:      make(map[Scope]List),
		Vocabulary: make(Vocabulary),
	}
}

// List returns the list for scope (nil when the scope has no list yet).
// The returned slice must not be modified; use Clone for a private copy.
func (s *State) List(scope Scope) List {
	return s.Lists[scope]
}

// Append adds name to the scope's list and to the vocabulary.
// Returns false without changes when the name is already on that list.
func (s *State) Append(scope Scope, name Name) bool {
	if s.Lists[scope].Contains(name) {
		return false
	}
	s.Lists[scope] = append(s.Lists[scope], name)
	s.Vocabulary.Add(name)
	return true
}

// Clear empties the scope's list, keeping the scope itself.
// Returns the number of removed entries.
func (s *State) Clear(scope Scope) int {
	n := len(s.Lists[scope])
	s.Lists[scope] = List{}
	return n
}

// Scopes returns every scope with a list, sorted.
func (s *State) Scopes() []Scope {
	out := make([]Scope, 0, len(s.Lists))
	for sc := range s.Lists {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	out := &State{
		Lists:      make(map[Scope]List, len(s.Lists)),
		Vocabulary: s.Vocabulary.Clone(),
	}
	for sc, l := range s.Lists {
		out.Lists[sc] = l.Clone()
		if out.Lists[sc] == nil {
			out.Lists[sc] = List{}
		}
	}
	return out
}

// RepairVocabulary inserts every listed name into the vocabulary and
// returns how many were missing.
func (s *State) RepairVocabulary() int {
	added := 0
	for _, l := range s.Lists {
		for _, n := range l {
			if s.Vocabulary.Add(n) {
				added++
			}
		}
	}
	return added
}

// DedupeLists drops repeated names from every list, keeping the first
// occurrence. Returns the number of dropped entries.
func (s *State) DedupeLists() int {
	dropped := 0
	for sc, l := range s.Lists {
		seen := make(map[Name]struct{}, len(l))
		kept := make(List, 0, len(l))
		for _, n := range l {
			if _, ok := seen[n]; ok {
				dropped++
				continue
			}
			seen[n] = struct{}{}
			kept = append(kept, n)
		}
		s.Lists[sc] = kept
	}
	return dropped
}
