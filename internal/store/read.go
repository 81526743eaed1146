package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"github.com/roach88/shoplist/internal/product"
)

// File keys of the two accepted shapes.
const (
	keySharedList = "shopping_list"
	keyUserLists  = "shopping_lists"
	keyVocabulary = "all_products"
)

// Shape identifies which layout was found on disk.
type Shape string

const (
	ShapeNone    Shape = "none"     // file absent or no list key
	ShapeShared  Shape = "shared"   // {"shopping_list": ...}
	ShapePerUser Shape = "per_user" // {"shopping_lists": ...}
)

// ErrCorrupt marks a data file that exists but cannot be decoded.
var ErrCorrupt = errors.New("data file corrupt")

// LoadInfo describes what Load found and how it was interpreted.
type LoadInfo struct {
	Shape Shape

	// Migrated is true when a per-user file was flattened into the shared list.
	Migrated bool

	// CrossUserDuplicates counts names that appeared in more than one user's
	// list during migration. They are kept, not merged.
	CrossUserDuplicates int

	// VocabularyRepaired counts listed names that were missing from
	// all_products and had to be added.
	VocabularyRepaired int

	// Corrupt holds the decode failure when the file was treated as empty.
	Corrupt error
}

// Load reads the data file. A missing file yields an empty state. A file
// that cannot be read or decoded is logged and also yields an empty state.
// Only context cancellation is returned as an error.
func (s *Store) Load(ctx context.Context) (*product.State, error) {
	st, _, err := s.LoadDetailed(ctx)
	return st, err
}

// LoadDetailed is Load plus a report of the detected shape and migration.
func (s *Store) LoadDetailed(ctx context.Context) (*product.State, LoadInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, LoadInfo{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debugw("data file not found, starting empty", "path", s.path)
		return product.NewState(), LoadInfo{Shape: ShapeNone}, nil
	}
	if err != nil {
		return s.failOpen(fmt.Errorf("%w: read: %v", ErrCorrupt, err))
	}

	st, info, err := s.decode(data)
	if err != nil {
		return s.failOpen(err)
	}

	if info.VocabularyRepaired > 0 {
		s.log.Warnw("listed products missing from vocabulary were restored",
			"path", s.path,
			"count", info.VocabularyRepaired,
		)
	}
	if info.Migrated {
		s.log.Infow("migrated per-user lists into shared list",
			"path", s.path,
			"items", len(st.List(product.SharedScope)),
			"cross_user_duplicates", info.CrossUserDuplicates,
		)
		if info.CrossUserDuplicates > 0 {
			s.log.Warnw("migrated list keeps products listed by several users",
				"path", s.path,
				"count", info.CrossUserDuplicates,
			)
		}
	}

	return st, info, nil
}

// failOpen logs a LoadCorrupt condition and returns an empty state.
func (s *Store) failOpen(err error) (*product.State, LoadInfo, error) {
	s.log.Errorw("cannot load data file, starting with empty state",
		"path", s.path,
		"error", err,
	)
	return product.NewState(), LoadInfo{Shape: ShapeNone, Corrupt: err}, nil
}

func (s *Store) decode(data []byte) (*product.State, LoadInfo, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, LoadInfo{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	st := product.NewState()
	info := LoadInfo{Shape: ShapeNone}

	if v, ok := raw[keyVocabulary]; ok {
		var names []string
		if err := json.Unmarshal(v, &names); err != nil {
			return nil, LoadInfo{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, keyVocabulary, err)
		}
		for _, n := range names {
			st.Vocabulary.Add(product.Normalize(n))
		}
	}

	sharedRaw, hasShared := raw[keySharedList]
	usersRaw, hasUsers := raw[keyUserLists]

	switch {
	case hasShared:
		var names []string
		if err := json.Unmarshal(sharedRaw, &names); err != nil {
			return nil, LoadInfo{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, keySharedList, err)
		}
		info.Shape = ShapeShared
		// In per-user mode the shared list is kept under its own scope
		// so nothing is lost when the file is rewritten.
		st.Lists[product.SharedScope] = dedupe(names)

	case hasUsers:
		var lists map[string][]string
		if err := json.Unmarshal(usersRaw, &lists); err != nil {
			return nil, LoadInfo{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, keyUserLists, err)
		}
		info.Shape = ShapePerUser
		if s.mode == ModeShared {
			st.Lists[product.SharedScope], info.CrossUserDuplicates = flatten(lists)
			info.Migrated = true
		} else {
			for uid, names := range lists {
				st.Lists[product.Scope(uid)] = dedupe(names)
			}
		}
	}

	info.VocabularyRepaired = st.RepairVocabulary()
	return st, info, nil
}

// dedupe normalizes names, drops empties and repeated entries, keeping
// first-occurrence order.
func dedupe(names []string) product.List {
	out := make(product.List, 0, len(names))
	for _, raw := range names {
		n := product.Normalize(raw)
		if n.IsEmpty() || out.Contains(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// flatten concatenates per-user lists in ascending numeric user-id order
// (non-numeric ids last, lexicographic). Order inside each list is kept and
// names listed by several users stay duplicated; the second return value
// counts those extra entries.
func flatten(lists map[string][]string) (product.List, int) {
	ids := make([]string, 0, len(lists))
	for id := range lists {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return userIDLess(ids[i], ids[j]) })

	out := product.List{}
	seen := make(map[product.Name]bool)
	dups := 0
	for _, id := range ids {
		for _, n := range dedupe(lists[id]) {
			if seen[n] {
				dups++
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, dups
}

func userIDLess(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}
