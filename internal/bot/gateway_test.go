package bot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shoplist/internal/bot"
	"github.com/roach88/shoplist/internal/engine"
	"github.com/roach88/shoplist/internal/testutil"
)

func TestDeliver_Routes(t *testing.T) {
	ctx := context.Background()
	choices := []bot.Choice{{Label: "ok", ID: "done"}}

	tests := []struct {
		name  string
		reply bot.Reply
		op    string
	}{
		{"plain send", bot.Reply{Kind: bot.ReplySend, Chat: 1, Text: "hi", Menu: true}, "send_text"},
		{"send with choices", bot.Reply{Kind: bot.ReplySend, Chat: 1, Text: "hi", Choices: choices}, "send_choices"},
		{"edit", bot.Reply{Kind: bot.ReplyEdit, Message: bot.MessageRef{Chat: 1, MessageID: "3"}, Text: "hi"}, "edit"},
		{"inline", bot.Reply{Kind: bot.ReplyInline, QueryID: "q"}, "answer_inline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := testutil.NewFakeGateway()
			require.NoError(t, bot.Deliver(ctx, gw, tt.reply))
			calls := gw.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.op, calls[0].Op)
		})
	}
}

func TestDeliver_WrapsFailure(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.Fail("edit")

	err := bot.Deliver(context.Background(), gw, bot.Reply{Kind: bot.ReplyEdit, Text: "x"})
	require.Error(t, err)
	assert.Equal(t, engine.KindGatewayUnavailable, engine.KindOf(err))
	assert.ErrorIs(t, err, testutil.ErrGatewayDown)
}

func TestDeliver_UnknownKind(t *testing.T) {
	err := bot.Deliver(context.Background(), testutil.NewFakeGateway(), bot.Reply{})
	assert.Equal(t, engine.KindGatewayUnavailable, engine.KindOf(err))
}
