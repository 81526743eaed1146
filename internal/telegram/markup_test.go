package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shoplist/internal/bot"
)

func TestMenuMarkup(t *testing.T) {
	m := menuMarkup()
	assert.True(t, m.ResizeKeyboard)
	require.Len(t, m.ReplyKeyboard, len(bot.MenuLayout))
	for i, row := range bot.MenuLayout {
		require.Len(t, m.ReplyKeyboard[i], len(row))
		for j, label := range row {
			assert.Equal(t, label, m.ReplyKeyboard[i][j].Text)
		}
	}
}

func TestChoicesMarkup(t *testing.T) {
	m := choicesMarkup([]bot.Choice{
		{Label: "➕ milk", ID: "add_similar:milk"},
		{Label: "❌", ID: "cancel"},
	})
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, "➕ milk", m.InlineKeyboard[0][0].Text)
	assert.Equal(t, "add_similar:milk", m.InlineKeyboard[0][0].Data)
	assert.Empty(t, m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "cancel", m.InlineKeyboard[1][0].Data)
}

func TestInlineResults(t *testing.T) {
	results := inlineResults([]bot.InlineResult{
		{ID: "inline:milk", Title: "milk", Description: "d", MessageText: "🛒 milk"},
	})
	require.Len(t, results, 1)
	assert.Equal(t, "inline:milk", results[0].ResultID())
}
