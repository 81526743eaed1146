package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/roach88/shoplist/internal/product"
)

// sharedFile is the current file shape. Field order is the on-disk order.
type sharedFile struct {
	ShoppingList []string `json:"shopping_list"`
	AllProducts  []string `json:"all_products"`
}

// perUserFile is the per-user file shape.
type perUserFile struct {
	ShoppingLists map[string][]string `json:"shopping_lists"`
	AllProducts   []string            `json:"all_products"`
}

// Save writes st to the data file atomically.
//
// The payload goes to <file>.tmp first, is fsynced, and is renamed over
// <file>. If ctx is done before the rename the temp file is removed and
// ctx.Err() is returned; the previous file stays as it was. Every I/O
// failure is returned as a *PersistError (errors.Is(err, ErrPersist)).
func (s *Store) Save(ctx context.Context, st *product.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.encode(st)
	if err != nil {
		return &PersistError{Op: "encode", Path: s.path, Err: err}
	}

	tmp := s.tmpPath()
	if err := writeSynced(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return &PersistError{Op: "write", Path: tmp, Err: err}
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &PersistError{Op: "rename", Path: s.path, Err: err}
	}

	s.log.Debugw("data file saved", "path", s.path, "bytes", len(data))
	return nil
}

// Encode renders st in the store's file shape without touching disk.
func (s *Store) Encode(st *product.State) ([]byte, error) {
	return s.encode(st)
}

func (s *Store) encode(st *product.State) ([]byte, error) {
	vocab := product.Names(st.Vocabulary.Sorted())

	var payload any
	if s.mode == ModePerUser {
		lists := make(map[string][]string, len(st.Lists))
		for scope, l := range st.Lists {
			lists[string(scope)] = nonNil(product.Names(l))
		}
		payload = perUserFile{ShoppingLists: lists, AllProducts: vocab}
	} else {
		payload = sharedFile{
			ShoppingList: nonNil(product.Names(st.List(product.SharedScope))),
			AllProducts:  vocab,
		}
	}

	// Product names are written verbatim: no HTML escaping, UTF-8 as is.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
