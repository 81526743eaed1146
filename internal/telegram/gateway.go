package telegram

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/roach88/shoplist/internal/bot"
)

var _ bot.Gateway = (*Adapter)(nil)

func (a *Adapter) SendText(ctx context.Context, chat int64, text string, menu bool) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	var opts []interface{}
	if menu {
		opts = append(opts, menuMarkup())
	}
	_, err := a.bot.Send(tele.ChatID(chat), text, opts...)
	return err
}

func (a *Adapter) SendTextWithChoices(ctx context.Context, chat int64, text string, choices []bot.Choice) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := a.bot.Send(tele.ChatID(chat), text, choicesMarkup(choices))
	return err
}

func (a *Adapter) EditPreviousMessage(ctx context.Context, msg bot.MessageRef, text string, choices []bot.Choice) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	var opts []interface{}
	if len(choices) > 0 {
		opts = append(opts, choicesMarkup(choices))
	}
	_, err := a.bot.Edit(tele.StoredMessage{MessageID: msg.MessageID, ChatID: msg.Chat}, text, opts...)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (a *Adapter) AnswerButton(ctx context.Context, callbackID string) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	return a.bot.Respond(&tele.Callback{ID: callbackID})
}

func (a *Adapter) AnswerInline(ctx context.Context, queryID string, results []bot.InlineResult) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	return a.bot.Answer(&tele.Query{ID: queryID}, &tele.QueryResponse{
		Results:    inlineResults(results),
		IsPersonal: true,
		CacheTime:  1,
	})
}
