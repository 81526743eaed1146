package telegram

import (
	tele "gopkg.in/telebot.v3"

	"github.com/roach88/shoplist/internal/bot"
)

// menuMarkup is the persistent main-menu keyboard.
func menuMarkup() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	rows := make([]tele.Row, 0, len(bot.MenuLayout))
	for _, labels := range bot.MenuLayout {
		btns := make([]tele.Btn, len(labels))
		for i, l := range labels {
			btns[i] = m.Text(l)
		}
		rows = append(rows, m.Row(btns...))
	}
	m.Reply(rows...)
	return m
}

// choicesMarkup renders one inline button per row. Button ids go out as
// raw callback data, not telebot's "\f<unique>|<data>" form, so their
// length is exactly what the codec checked.
func choicesMarkup(choices []bot.Choice) *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, len(choices))
	for i, c := range choices {
		rows[i] = []tele.InlineButton{{Text: c.Label, Data: c.ID}}
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

func inlineResults(results []bot.InlineResult) tele.Results {
	out := make(tele.Results, len(results))
	for i, r := range results {
		article := &tele.ArticleResult{
			Title:       r.Title,
			Description: r.Description,
			Text:        r.MessageText,
		}
		article.SetResultID(r.ID)
		out[i] = article
	}
	return out
}
