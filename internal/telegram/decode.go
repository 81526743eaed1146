package telegram

import (
	"strconv"

	tele "gopkg.in/telebot.v3"

	"github.com/roach88/shoplist/internal/bot"
)

func decodeText(m *tele.Message) (bot.Event, bool) {
	if m == nil || m.Sender == nil || m.Chat == nil {
		return nil, false
	}
	return bot.Decode(m.Sender.ID, m.Chat.ID, m.Text), true
}

func decodeCallback(cb *tele.Callback) (bot.Event, bool) {
	if cb == nil || cb.Sender == nil {
		return nil, false
	}
	ev := bot.ButtonPress{
		Sender:     cb.Sender.ID,
		CallbackID: cb.ID,
		ButtonID:   cb.Data,
	}
	if cb.Message != nil && cb.Message.Chat != nil {
		ev.Chat = cb.Message.Chat.ID
		ev.Message = bot.MessageRef{Chat: cb.Message.Chat.ID, MessageID: strconv.Itoa(cb.Message.ID)}
	} else {
		// Button under a message posted in inline mode.
		ev.Message = bot.MessageRef{MessageID: cb.MessageID}
	}
	return ev, true
}

func decodeQuery(q *tele.Query) (bot.Event, bool) {
	if q == nil || q.Sender == nil {
		return nil, false
	}
	return bot.InlineQuery{Sender: q.Sender.ID, QueryID: q.ID, Text: q.Text}, true
}

func decodeInlineResult(r *tele.InlineResult) (bot.Event, bool) {
	if r == nil || r.Sender == nil {
		return nil, false
	}
	return bot.InlineChoice{Sender: r.Sender.ID, ResultID: r.ResultID, Text: r.Query}, true
}
