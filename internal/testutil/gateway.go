package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/shoplist/internal/bot"
)

// ErrGatewayDown is returned by calls a FakeGateway is told to fail.
var ErrGatewayDown = errors.New("gateway down")

// Call is one recorded gateway call.
type Call struct {
	Op         string
	Chat       int64
	Text       string
	Menu       bool
	Choices    []bot.Choice
	Message    bot.MessageRef
	CallbackID string
	QueryID    string
	Results    []bot.InlineResult
}

// FakeGateway records every outbound call in order.
//
// Thread-safety: safe for concurrent use.
type FakeGateway struct {
	mu      sync.Mutex
	calls   []Call
	failing map[string]bool
	sent    chan struct{}
}

// NewFakeGateway creates an empty recorder.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		failing: make(map[string]bool),
		sent:    make(chan struct{}, 1024),
	}
}

// Fail makes every later call of op return ErrGatewayDown. The call is
// still recorded.
func (g *FakeGateway) Fail(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing[op] = true
}

// Recover undoes Fail(op).
func (g *FakeGateway) Recover(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failing, op)
}

// Calls returns a copy of the recorded calls.
func (g *FakeGateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// Reset forgets recorded calls.
func (g *FakeGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
}

// Sent fires once per recorded call.
func (g *FakeGateway) Sent() <-chan struct{} {
	return g.sent
}

func (g *FakeGateway) record(ctx context.Context, c Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	g.calls = append(g.calls, c)
	fail := g.failing[c.Op]
	g.mu.Unlock()

	select {
	case g.sent <- struct{}{}:
	default:
	}
	if fail {
		return ErrGatewayDown
	}
	return nil
}

func (g *FakeGateway) SendText(ctx context.Context, chat int64, text string, menu bool) error {
	return g.record(ctx, Call{Op: "send_text", Chat: chat, Text: text, Menu: menu})
}

func (g *FakeGateway) SendTextWithChoices(ctx context.Context, chat int64, text string, choices []bot.Choice) error {
	return g.record(ctx, Call{Op: "send_choices", Chat: chat, Text: text, Choices: choices})
}

func (g *FakeGateway) EditPreviousMessage(ctx context.Context, msg bot.MessageRef, text string, choices []bot.Choice) error {
	return g.record(ctx, Call{Op: "edit", Chat: msg.Chat, Message: msg, Text: text, Choices: choices})
}

func (g *FakeGateway) AnswerButton(ctx context.Context, callbackID string) error {
	return g.record(ctx, Call{Op: "answer_button", CallbackID: callbackID})
}

func (g *FakeGateway) AnswerInline(ctx context.Context, queryID string, results []bot.InlineResult) error {
	return g.record(ctx, Call{Op: "answer_inline", QueryID: queryID, Results: results})
}

// Transcript renders calls as plain text, one block per call, for golden
// comparisons.
func Transcript(calls []Call) string {
	var sb strings.Builder
	for _, c := range calls {
		sb.WriteString(c.String())
	}
	return sb.String()
}

// String renders one call.
func (c Call) String() string {
	var sb strings.Builder
	switch c.Op {
	case "answer_button":
		fmt.Fprintf(&sb, "<- %s %s\n", c.Op, c.CallbackID)
		return sb.String()
	case "answer_inline":
		fmt.Fprintf(&sb, "<- %s %s\n", c.Op, c.QueryID)
		for _, r := range c.Results {
			fmt.Fprintf(&sb, "   * %s [%s]\n", r.Title, r.ID)
		}
		return sb.String()
	case "edit":
		fmt.Fprintf(&sb, "<- %s %d/%s\n", c.Op, c.Chat, c.Message.MessageID)
	default:
		fmt.Fprintf(&sb, "<- %s %d\n", c.Op, c.Chat)
	}
	for _, line := range strings.Split(c.Text, "\n") {
		fmt.Fprintf(&sb, "   | %s\n", line)
	}
	if c.Menu {
		sb.WriteString("   [menu]\n")
	}
	for _, ch := range c.Choices {
		fmt.Fprintf(&sb, "   [%s] %s\n", ch.ID, ch.Label)
	}
	return sb.String()
}
