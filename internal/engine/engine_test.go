package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shoplist/internal/product"
	"github.com/roach88/shoplist/internal/store"
)

// recordingSaver keeps the last saved state and can be told to fail.
type recordingSaver struct {
	mu    sync.Mutex
	saves int
	last  *product.State
	err   error
}

func (s *recordingSaver) Save(ctx context.Context, st *product.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.last = st.Clone()
	return nil
}

func newTestEngine(t *testing.T, names ...product.Name) (*Engine, *recordingSaver) {
	t.Helper()
	st := product.NewState()
	for _, n := range names {
		st.Vocabulary.Add(n)
	}
	saver := &recordingSaver{}
	return New(saver, st), saver
}

func TestAdd_DistinctNamesKeepInsertionOrder(t *testing.T) {
	e, saver := newTestEngine(t)
	ctx := context.Background()
	names := []string{"milk", "bread", "eggs", "cheese", "tea"}

	for i, n := range names {
		res, err := e.Add(ctx, product.SharedScope, n)
		require.NoError(t, err)
		assert.Equal(t, i+1, res.Size)
	}

	got := e.List(product.SharedScope)
	assert.Len(t, got, len(names))
	assert.Equal(t, names, product.Names(got))
	assert.Equal(t, len(names), saver.saves, "every add persists")
}

func TestAdd_NormalizesInput(t *testing.T) {
	e, _ := newTestEngine(t)

	res, err := e.Add(context.Background(), product.SharedScope, "  Sour   CREAM ")
	require.NoError(t, err)

	assert.Equal(t, product.Name("sour cream"), res.Name)
	assert.True(t, res.NewToVocabulary)
	assert.True(t, e.IsPresent(product.SharedScope, "sour cream"))
}

func TestAdd_DuplicateIsReportedAndNotSaved(t *testing.T) {
	e, saver := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, product.SharedScope, "milk")
	require.NoError(t, err)

	res, err := e.Add(ctx, product.SharedScope, " MILK")
	require.Error(t, err)

	assert.True(t, IsDuplicate(err))
	assert.Equal(t, KindDuplicateEntry, KindOf(err))
	assert.Equal(t, product.Name("milk"), res.Name)
	assert.Len(t, e.List(product.SharedScope), 1)
	assert.Equal(t, 1, saver.saves)
}

func TestAdd_EmptyNameRejected(t *testing.T) {
	e, saver := newTestEngine(t)

	_, err := e.Add(context.Background(), product.SharedScope, "   ")

	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Equal(t, KindInvalidName, KindOf(err))
	assert.Zero(t, saver.saves)
}

func TestAdd_KnownNameNotNewToVocabulary(t *testing.T) {
	e, _ := newTestEngine(t, "milk")

	res, err := e.Add(context.Background(), product.SharedScope, "milk")
	require.NoError(t, err)
	assert.False(t, res.NewToVocabulary)
}

func TestAdd_ScopesAreIndependent(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, product.UserScope(1), "milk")
	require.NoError(t, err)
	_, err = e.Add(ctx, product.UserScope(2), "milk")
	require.NoError(t, err, "same product on another user's list is not a duplicate")

	assert.True(t, e.IsPresent(product.UserScope(1), "milk"))
	assert.False(t, e.IsPresent(product.SharedScope, "milk"))
}

func TestAdd_PersistFailureLeavesStateUnchanged(t *testing.T) {
	e, saver := newTestEngine(t)
	ctx := context.Background()
	_, err := e.Add(ctx, product.SharedScope, "milk")
	require.NoError(t, err)

	saver.err = errors.New("disk full")
	_, err = e.Add(ctx, product.SharedScope, "bread")

	require.Error(t, err)
	assert.True(t, IsPersistFailure(err))
	assert.Equal(t, []product.Name{"milk"}, e.List(product.SharedScope))
	assert.False(t, e.HasProduct("bread"), "vocabulary must not change on failed save")

	saver.err = nil
	_, err = e.Add(ctx, product.SharedScope, "bread")
	require.NoError(t, err, "retry after the disk recovers succeeds")
}

func TestAdd_CancelledContextHasNoEffect(t *testing.T) {
	e, saver := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Add(ctx, product.SharedScope, "milk")

	assert.True(t, IsPersistFailure(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, e.List(product.SharedScope))
	assert.Zero(t, saver.saves)
}

func TestAdd_SaveTimeoutApplied(t *testing.T) {
	saver := &blockingSaver{}
	e := New(saver, nil, WithSaveTimeout(20*time.Millisecond))

	_, err := e.Add(context.Background(), product.SharedScope, "milk")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, e.List(product.SharedScope))
}

// blockingSaver waits for the context to end.
type blockingSaver struct{}

func (blockingSaver) Save(ctx context.Context, _ *product.State) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestClear_EmptiesListKeepsVocabulary(t *testing.T) {
	e, saver := newTestEngine(t)
	ctx := context.Background()
	for _, n := range []string{"milk", "bread"} {
		_, err := e.Add(ctx, product.SharedScope, n)
		require.NoError(t, err)
	}

	removed, err := e.Clear(ctx, product.SharedScope)
	require.NoError(t, err)

	assert.Equal(t, 2, removed)
	assert.Empty(t, e.List(product.SharedScope))
	assert.Equal(t, []product.Name{"bread", "milk"}, e.Vocabulary())
	assert.Empty(t, saver.last.List(product.SharedScope))
	assert.Equal(t, []product.Name{"milk"}, e.Suggest("mlik"), "cleared names still feed suggestions")
}

func TestClear_EmptyListDoesNotWrite(t *testing.T) {
	e, saver := newTestEngine(t)

	removed, err := e.Clear(context.Background(), product.SharedScope)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Zero(t, saver.saves)
}

func TestClear_PersistFailureKeepsList(t *testing.T) {
	e, saver := newTestEngine(t)
	ctx := context.Background()
	_, err := e.Add(ctx, product.SharedScope, "milk")
	require.NoError(t, err)

	saver.err = errors.New("read-only file system")
	_, err = e.Clear(ctx, product.SharedScope)

	assert.True(t, IsPersistFailure(err))
	assert.Equal(t, []product.Name{"milk"}, e.List(product.SharedScope))
}

func TestReplace(t *testing.T) {
	e, saver := newTestEngine(t)
	next := product.NewState()
	next.Append(product.SharedScope, "salt")

	require.NoError(t, e.Replace(context.Background(), next))

	assert.Equal(t, []product.Name{"salt"}, e.List(product.SharedScope))
	assert.Equal(t, 1, saver.saves)
}

func TestKindOf_CorruptDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"shopping_list": [`), 0o644))
	s, err := store.Open(path, store.ModeShared, nil)
	require.NoError(t, err)

	_, info, err := s.LoadDetailed(context.Background())
	require.NoError(t, err)
	require.Error(t, info.Corrupt)

	assert.Equal(t, KindLoadCorrupt, KindOf(info.Corrupt))
	assert.Equal(t, KindLoadCorrupt, KindOf(fmt.Errorf("migrate: %w", info.Corrupt)))
	assert.Equal(t, Kind(""), KindOf(errors.New("disk full")))
}

func TestSnapshot_IsACopy(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Add(context.Background(), product.SharedScope, "milk")
	require.NoError(t, err)

	snap := e.Snapshot()
	snap.Append(product.SharedScope, "bread")

	assert.Equal(t, []product.Name{"milk"}, e.List(product.SharedScope))
}

func TestLoad_WithFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := store.Open(path, store.ModeShared, nil)
	require.NoError(t, err)
	ctx := context.Background()

	e, err := Load(ctx, s)
	require.NoError(t, err)
	_, err = e.Add(ctx, product.SharedScope, "milk")
	require.NoError(t, err)
	_, err = e.Add(ctx, product.SharedScope, "bread")
	require.NoError(t, err)

	reloaded, err := Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []product.Name{"milk", "bread"}, reloaded.List(product.SharedScope))
}

func TestEngine_ConcurrentAddsStayDuplicateFree(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, _ = e.Add(ctx, product.SharedScope, fmt.Sprintf("item %d", i))
			}
		}()
	}
	wg.Wait()

	assert.Len(t, e.List(product.SharedScope), 20)
}
