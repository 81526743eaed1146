package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeData[T any](t *testing.T, out string) T {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Data   T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestAddAndList(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "add", "Milk", "  rye   BREAD ")
	require.NoError(t, err)
	assert.Equal(t, "+ milk\n+ rye bread\n", out)

	out, err = env.run(t, "add", "milk")
	require.NoError(t, err)
	assert.Equal(t, "· milk is already on the list\n", out)

	out, err = env.run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, " 1. milk\n 2. rye bread\n", out)

	assert.Contains(t, env.readData(t), `"shopping_list": [`)
}

func TestAdd_JSON(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "--format", "json", "add", "milk", "eggs", "milk")
	require.NoError(t, err)

	res := decodeData[AddResult](t, out)
	assert.Equal(t, "shared", res.Scope)
	assert.Equal(t, []AddedItem{
		{Input: "milk", Name: "milk", Result: "added", NewToVocabulary: true},
		{Input: "eggs", Name: "eggs", Result: "added", NewToVocabulary: true},
		{Input: "milk", Name: "milk", Result: "duplicate"},
	}, res.Items)
}

func TestAdd_EmptyName(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "add", "   ")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
	assert.NoFileExists(t, env.dataPath)
}

func TestClear_KeepsVocabulary(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "add", "milk", "bread")
	require.NoError(t, err)

	out, err := env.run(t, "clear")
	require.NoError(t, err)
	assert.Equal(t, "Removed 2 item(s).\n", out)

	out, err = env.run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "The list is empty.\n", out)

	out, err = env.run(t, "--format", "json", "search")
	require.NoError(t, err)
	assert.Equal(t, []string{"bread", "milk"}, decodeData[MatchResult](t, out).Matches)

	out, err = env.run(t, "--format", "json", "clear")
	require.NoError(t, err)
	assert.Equal(t, ClearResult{Scope: "shared", Removed: 0}, decodeData[ClearResult](t, out))
}

func TestPerUserScopeNeedsUser(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("LIST_SCOPE", "per_user")

	_, err := env.run(t, "add", "milk")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--user")

	_, err = env.run(t, "add", "--user", "42", "milk")
	require.NoError(t, err)
	_, err = env.run(t, "add", "-u", "7", "tea")
	require.NoError(t, err)

	out, err := env.run(t, "--format", "json", "list", "--user", "42")
	require.NoError(t, err)
	assert.Equal(t, ListResult{Scope: "42", Items: []string{"milk"}}, decodeData[ListResult](t, out))

	data := env.readData(t)
	assert.Contains(t, data, `"shopping_lists": {`)
	assert.Contains(t, data, `"42": [`)
	assert.Contains(t, data, `"7": [`)
}

func TestSearch(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "add", "bread", "cream", "rice", "milk")
	require.NoError(t, err)

	out, err := env.run(t, "search", "RE")
	require.NoError(t, err)
	assert.Equal(t, "bread\ncream\n", out)

	out, err = env.run(t, "search", "xyz")
	require.NoError(t, err)
	assert.Equal(t, "No products found.\n", out)
}

func TestSuggest(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "add", "milk", "bread")
	require.NoError(t, err)

	out, err := env.run(t, "suggest", "milc")
	require.NoError(t, err)
	assert.Equal(t, "milk\n", out)

	out, err = env.run(t, "--format", "json", "suggest", "zzzz")
	require.NoError(t, err)
	res := decodeData[MatchResult](t, out)
	assert.Equal(t, "zzzz", res.Query)
	assert.Empty(t, res.Matches)
}
