package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/shoplist/internal/product"
)

// Saver persists a complete state. Implemented by *store.Store.
type Saver interface {
	Save(ctx context.Context, st *product.State) error
}

// Loader reads the persisted state. Implemented by *store.Store.
type Loader interface {
	Load(ctx context.Context) (*product.State, error)
}

// Store is what Load needs: read once, save after every mutation.
type Store interface {
	Loader
	Saver
}

// DefaultSaveTimeout bounds one save so a stuck disk cannot stall the
// event loop indefinitely.
const DefaultSaveTimeout = 5 * time.Second

// Engine owns the live shopping state.
type Engine struct {
	mu          sync.Mutex
	saver       Saver
	state       *product.State
	log         *zap.SugaredLogger
	saveTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: no-op.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSaveTimeout bounds each save. Zero or negative disables the bound.
//
// Default: 5s (DefaultSaveTimeout)
func WithSaveTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.saveTimeout = d
	}
}

// New creates an engine over an already loaded state.
// A nil state starts empty.
func New(saver Saver, state *product.State, opts ...Option) *Engine {
	if state == nil {
		state = product.NewState()
	}
	e := &Engine{
		saver:       saver,
		state:       state,
		log:         zap.NewNop().Sugar(),
		saveTimeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "engine")
	return e
}

// Load reads the state from s and returns an engine that saves back to it.
func Load(ctx context.Context, s Store, opts ...Option) (*Engine, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(s, st, opts...), nil
}

// AddResult describes an accepted add.
type AddResult struct {
	Name product.Name

	// NewToVocabulary is true when the name had never been added before.
	NewToVocabulary bool

	// Size is the list length after the add.
	Size int
}

// IsPresent reports whether name is on the scope's list.
func (e *Engine) IsPresent(scope product.Scope, name product.Name) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.List(scope).Contains(name)
}

// Add normalizes raw and appends it to the scope's list.
//
// Returns a KindInvalidName error for empty input and a KindDuplicateEntry
// error (list unchanged, nothing written) when the name is already listed.
// On success the name is also in the vocabulary and the state is on disk.
func (e *Engine) Add(ctx context.Context, scope product.Scope, raw string) (AddResult, error) {
	name := product.Normalize(raw)
	if name.IsEmpty() {
		return AddResult{}, &Error{Kind: KindInvalidName, Op: "add", Scope: scope, Err: ErrEmptyName}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.List(scope).Contains(name) {
		return AddResult{Name: name, Size: len(e.state.List(scope))}, &Error{
			Kind:  KindDuplicateEntry,
			Op:    "add",
			Scope: scope,
			Name:  name,
			Err:   ErrDuplicateEntry,
		}
	}

	next := e.state.Clone()
	isNew := !next.Vocabulary.Has(name)
	next.Append(scope, name)

	if err := e.commit(ctx, next); err != nil {
		return AddResult{}, &Error{Kind: KindPersistFailure, Op: "add", Scope: scope, Name: name, Err: err}
	}

	e.log.Infow("product added",
		"scope", scope,
		"name", name,
		"new_to_vocabulary", isNew,
	)
	return AddResult{Name: name, NewToVocabulary: isNew, Size: len(e.state.List(scope))}, nil
}

// Clear empties the scope's list and returns how many items were removed.
// The vocabulary is untouched. An already empty list is not rewritten.
func (e *Engine) Clear(ctx context.Context, scope product.Scope) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.state.List(scope)) == 0 {
		return 0, nil
	}

	next := e.state.Clone()
	removed := next.Clear(scope)

	if err := e.commit(ctx, next); err != nil {
		return 0, &Error{Kind: KindPersistFailure, Op: "clear", Scope: scope, Err: err}
	}

	e.log.Infow("list cleared", "scope", scope, "removed", removed)
	return removed, nil
}

// Replace saves next and makes it the live state. migrate writes its
// converted or deduplicated state through it; regular operations go
// through Add and Clear.
func (e *Engine) Replace(ctx context.Context, next *product.State) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.commit(ctx, next.Clone()); err != nil {
		return &Error{Kind: KindPersistFailure, Op: "replace", Err: err}
	}
	return nil
}

// List returns a copy of the scope's list in insertion order.
func (e *Engine) List(scope product.Scope) []product.Name {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.state.List(scope)
	out := make([]product.Name, len(l))
	copy(out, l)
	return out
}

// Vocabulary returns every known product name, sorted.
func (e *Engine) Vocabulary() []product.Name {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Vocabulary.Sorted()
}

// HasProduct reports whether name is in the vocabulary.
func (e *Engine) HasProduct(name product.Name) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Vocabulary.Has(name)
}

// Snapshot returns a deep copy of the live state.
func (e *Engine) Snapshot() *product.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// commit saves next and makes it the live state. Caller holds e.mu.
func (e *Engine) commit(ctx context.Context, next *product.State) error {
	if e.saveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.saveTimeout)
		defer cancel()
	}

	if err := e.saver.Save(ctx, next); err != nil {
		e.log.Errorw("save failed, in-memory state left unchanged", "error", err)
		return err
	}
	e.state = next
	return nil
}
