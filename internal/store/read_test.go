package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shoplist/internal/product"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := createTestStore(t, ModeShared)

	st, info, err := s.LoadDetailed(context.Background())
	require.NoError(t, err)

	assert.Empty(t, st.Lists)
	assert.Empty(t, st.Vocabulary)
	assert.Equal(t, ShapeNone, info.Shape)
	assert.NoError(t, info.Corrupt)
}

func TestLoad_CurrentShape(t *testing.T) {
	s := createTestStore(t, ModeShared)
	writeDataFile(t, s, `{"shopping_list": ["milk", "bread"], "all_products": ["milk", "bread", "eggs"]}`)

	st, info, err := s.LoadDetailed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ShapeShared, info.Shape)
	assert.False(t, info.Migrated)
	assert.Equal(t, product.List{"milk", "bread"}, st.List(product.SharedScope))
	assert.Equal(t, []product.Name{"bread", "eggs", "milk"}, st.Vocabulary.Sorted())
}

func TestLoad_LegacyShapeMigratesKeepingDuplicates(t *testing.T) {
	s := createTestStore(t, ModeShared)
	writeDataFile(t, s, `{"shopping_lists": {"1": ["a"], "2": ["b", "a"]}, "all_products": ["a", "b"]}`)

	st, info, err := s.LoadDetailed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ShapePerUser, info.Shape)
	assert.True(t, info.Migrated)
	assert.Equal(t, 1, info.CrossUserDuplicates)
	assert.Equal(t, product.List{"a", "b", "a"}, st.List(product.SharedScope))
	assert.Equal(t, []product.Name{"a", "b"}, st.Vocabulary.Sorted())
}

func TestLoad_LegacyUsersOrderedNumerically(t *testing.T) {
	s := createTestStore(t, ModeShared)
	writeDataFile(t, s, `{"shopping_lists": {"10": ["tea"], "9": ["milk", "eggs"], "x": ["salt"]}}`)

	st, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, product.List{"milk", "eggs", "tea", "salt"}, st.List(product.SharedScope))
}

func TestLoad_LegacyVocabularyIsUnionWithLists(t *testing.T) {
	s := createTestStore(t, ModeShared)
	writeDataFile(t, s, `{"shopping_lists": {"1": ["Milk "]}, "all_products": ["cheese"]}`)

	st, info, err := s.LoadDetailed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, info.VocabularyRepaired)
	assert.Equal(t, []product.Name{"cheese", "milk"}, st.Vocabulary.Sorted())
}

func TestLoad_PerUserModeKeepsLists(t *testing.T) {
	s := createTestStore(t, ModePerUser)
	writeDataFile(t, s, `{"shopping_lists": {"1": ["a"], "2": ["b", "a"]}, "all_products": ["a", "b"]}`)

	st, info, err := s.LoadDetailed(context.Background())
	require.NoError(t, err)

	assert.False(t, info.Migrated)
	assert.Equal(t, product.List{"a"}, st.List("1"))
	assert.Equal(t, product.List{"b", "a"}, st.List("2"))
}

func TestLoad_PerUserModeReadsSharedListUnderSharedScope(t *testing.T) {
	s := createTestStore(t, ModePerUser)
	writeDataFile(t, s, `{"shopping_list": ["milk"], "all_products": ["milk"]}`)

	st, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, product.List{"milk"}, st.List(product.SharedScope))
}

func TestLoad_VocabularyOnly(t *testing.T) {
	s := createTestStore(t, ModeShared)
	writeDataFile(t, s, `{"all_products": ["milk"]}`)

	st, info, err := s.LoadDetailed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ShapeNone, info.Shape)
	assert.Empty(t, st.List(product.SharedScope))
	assert.True(t, st.Vocabulary.Has("milk"))
}

func TestLoad_DropsDuplicateAndEmptyEntries(t *testing.T) {
	s := createTestStore(t, ModeShared)
	writeDataFile(t, s, `{"shopping_list": ["milk", " MILK", "", "bread"], "all_products": []}`)

	st, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, product.List{"milk", "bread"}, st.List(product.SharedScope))
}

func TestLoad_CorruptFileFailsOpen(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{"shopping_list": [`},
		{"not an object", `["milk"]`},
		{"list has wrong type", `{"shopping_list": 5}`},
		{"vocabulary has wrong type", `{"shopping_list": [], "all_products": {"a": 1}}`},
		{"user lists wrong type", `{"shopping_lists": ["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, logs := createObservedStore(t, ModeShared)
			writeDataFile(t, s, tt.content)

			st, info, err := s.LoadDetailed(context.Background())
			require.NoError(t, err, "corrupt content must not fail Load")

			assert.Empty(t, st.Lists)
			assert.Empty(t, st.Vocabulary)
			assert.True(t, errors.Is(info.Corrupt, ErrCorrupt))
			assert.Equal(t, 1, logs.FilterMessage("cannot load data file, starting with empty state").Len())
		})
	}
}

func TestLoad_MigrationWarnsAboutDuplicates(t *testing.T) {
	s, logs := createObservedStore(t, ModeShared)
	writeDataFile(t, s, `{"shopping_lists": {"1": ["a"], "2": ["a"]}, "all_products": ["a"]}`)

	_, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("migrated list keeps products listed by several users").Len())
}

func TestLoad_CancelledContext(t *testing.T) {
	s := createTestStore(t, ModeShared)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFlatten_EmptyInput(t *testing.T) {
	l, dups := flatten(nil)
	assert.Empty(t, l)
	assert.Zero(t, dups)
}
