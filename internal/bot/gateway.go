package bot

import (
	"context"
	"fmt"

	"github.com/roach88/shoplist/internal/engine"
)

// Gateway is the outbound side of the messaging service.
type Gateway interface {
	// SendText sends a message, optionally with the main-menu keyboard.
	SendText(ctx context.Context, chat int64, text string, menu bool) error
	// SendTextWithChoices sends a message with one inline button per choice.
	SendTextWithChoices(ctx context.Context, chat int64, text string, choices []Choice) error
	// EditPreviousMessage replaces the text and buttons of a sent message.
	EditPreviousMessage(ctx context.Context, msg MessageRef, text string, choices []Choice) error
	// AnswerButton acknowledges a button press so the client stops waiting.
	AnswerButton(ctx context.Context, callbackID string) error
	// AnswerInline returns results for an inline query.
	AnswerInline(ctx context.Context, queryID string, results []InlineResult) error
}

// Deliver performs the Gateway call matching r.Kind. Failures come back as
// KindGatewayUnavailable errors.
func Deliver(ctx context.Context, gw Gateway, r Reply) error {
	var err error
	switch r.Kind {
	case ReplySend:
		if len(r.Choices) > 0 {
			err = gw.SendTextWithChoices(ctx, r.Chat, r.Text, r.Choices)
		} else {
			err = gw.SendText(ctx, r.Chat, r.Text, r.Menu)
		}
	case ReplyEdit:
		err = gw.EditPreviousMessage(ctx, r.Message, r.Text, r.Choices)
	case ReplyInline:
		err = gw.AnswerInline(ctx, r.QueryID, r.Results)
	default:
		err = fmt.Errorf("unknown reply kind %d", r.Kind)
	}
	if err != nil {
		return engine.NewGatewayError(r.Kind.String(), err)
	}
	return nil
}
