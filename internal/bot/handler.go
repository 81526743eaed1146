package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/shoplist/internal/dialog"
	"github.com/roach88/shoplist/internal/engine"
	"github.com/roach88/shoplist/internal/product"
	"github.com/roach88/shoplist/internal/store"
)

// Outcome results, as recorded in the journal and metrics.
const (
	ResultOK        = "ok"
	ResultDuplicate = "duplicate"
	ResultSuggested = "suggested"
	ResultNotFound  = "not_found"
	ResultEmpty     = "empty"
	ResultFailed    = "failed"
	ResultIgnored   = "ignored"
)

// Outcome is what handling one event produced.
type Outcome struct {
	// Op names the operation: "menu", "add", "suggest", "search", "list",
	// "clear", "done", "cancel", "hint" or "ignore".
	Op     string
	Result string

	// Name is the product the operation was about, if any.
	Name product.Name

	// Err is the cause of a ResultFailed outcome. It is never shown to the user.
	Err error

	Replies []Reply
}

// EventHandler handles one event. Loop calls it from a single goroutine.
type EventHandler interface {
	Handle(ctx context.Context, ev Event) Outcome
}

// Handler is the chat front end of the list engine.
type Handler struct {
	engine   *engine.Engine
	sessions *dialog.Sessions
	mode     store.Mode
	log      *zap.SugaredLogger
}

// NewHandler creates a Handler. mode selects whether senders share one list.
func NewHandler(e *engine.Engine, sessions *dialog.Sessions, mode store.Mode, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		engine:   e,
		sessions: sessions,
		mode:     mode,
		log:      log.With("component", "handler"),
	}
}

// Scope returns the list a sender works on.
func (h *Handler) Scope(sender int64) product.Scope {
	if h.mode == store.ModePerUser {
		return product.UserScope(sender)
	}
	return product.SharedScope
}

// Handle dispatches ev. It never returns raw errors to the user: failures
// become an apology reply and Outcome.Err.
func (h *Handler) Handle(ctx context.Context, ev Event) Outcome {
	switch ev := ev.(type) {
	case MenuSelect:
		return h.onMenu(ctx, ev)
	case TextMessage:
		return h.onText(ctx, ev)
	case ButtonPress:
		return h.onButton(ctx, ev)
	case InlineQuery:
		return h.onInlineQuery(ev)
	case InlineChoice:
		return h.onInlineChoice(ctx, ev)
	default:
		return Outcome{Op: "ignore", Result: ResultIgnored}
	}
}

func (h *Handler) onMenu(ctx context.Context, ev MenuSelect) Outcome {
	sess := h.sessions.Get(ev.Sender)

	switch ev.Item {
	case MenuAdd:
		h.sessions.Put(ev.Sender, dialog.Apply(sess, dialog.SignalStartAdd))
		return Outcome{Op: "menu", Result: ResultOK, Replies: []Reply{
			send(ev.Chat, textAddPrompt, doneChoices()),
		}}
	case MenuSearch:
		h.sessions.Put(ev.Sender, dialog.Apply(sess, dialog.SignalStartSearch))
		return Outcome{Op: "menu", Result: ResultOK, Replies: []Reply{
			send(ev.Chat, textSearchPrompt, doneChoices()),
		}}
	}

	// Everything else leaves any flow in progress first.
	h.sessions.Put(ev.Sender, dialog.Apply(sess, dialog.SignalMenu))
	scope := h.Scope(ev.Sender)

	switch ev.Item {
	case MenuShowList:
		items := h.engine.List(scope)
		result := ResultOK
		if len(items) == 0 {
			result = ResultEmpty
		}
		return Outcome{Op: "list", Result: result, Replies: []Reply{
			sendMenu(ev.Chat, formatList(items)),
		}}
	case MenuClear:
		removed, err := h.engine.Clear(ctx, scope)
		if err != nil {
			h.log.Errorw("clear failed", "scope", scope, "error", err)
			return h.apology("clear", ev.Chat, err)
		}
		result := ResultOK
		if removed == 0 {
			result = ResultEmpty
		}
		return Outcome{Op: "clear", Result: result, Replies: []Reply{
			sendMenu(ev.Chat, textCleared),
		}}
	default:
		return Outcome{Op: "menu", Result: ResultOK, Replies: []Reply{
			sendMenu(ev.Chat, textGreeting),
		}}
	}
}

func (h *Handler) onText(ctx context.Context, ev TextMessage) Outcome {
	sess := h.sessions.Get(ev.Sender)
	switch sess.State {
	case dialog.AwaitingProductName:
		return h.addTyped(ctx, ev, sess)
	case dialog.AwaitingSearchQuery:
		return h.search(ev, sess)
	default:
		return Outcome{Op: "hint", Result: ResultIgnored, Replies: []Reply{
			sendMenu(ev.Chat, textUseMenu),
		}}
	}
}

// addTyped handles a product name typed in add mode: known names go
// straight in, unknown ones are first checked for near matches.
func (h *Handler) addTyped(ctx context.Context, ev TextMessage, sess dialog.Session) Outcome {
	name := product.Normalize(ev.Text)
	if name.IsEmpty() {
		return Outcome{Op: "add", Result: ResultIgnored}
	}
	scope := h.Scope(ev.Sender)

	if h.engine.IsPresent(scope, name) {
		return Outcome{Op: "add", Result: ResultDuplicate, Name: name, Replies: []Reply{
			send(ev.Chat, formatName(textDuplicate, name), doneChoices()),
		}}
	}

	if !h.engine.HasProduct(name) {
		if similar := h.engine.Suggest(ev.Text); len(similar) > 0 {
			choices, err := suggestionChoices(name, similar)
			if err != nil {
				h.log.Errorw("cannot encode suggestion buttons", "name", name, "error", err)
				return h.apology("suggest", ev.Chat, err)
			}
			h.sessions.Put(ev.Sender, sess.Offer(name, similar))
			return Outcome{Op: "suggest", Result: ResultSuggested, Name: name, Replies: []Reply{
				send(ev.Chat, textDidYouMean, choices),
			}}
		}
	}

	out, text := h.add(ctx, scope, name)
	out.Replies = []Reply{send(ev.Chat, text, doneChoices())}
	return out
}

func (h *Handler) search(ev TextMessage, sess dialog.Session) Outcome {
	hits := h.engine.Search(ev.Text)
	if len(hits) == 0 {
		return Outcome{Op: "search", Result: ResultNotFound, Replies: []Reply{
			send(ev.Chat, textNotFound, doneChoices()),
		}}
	}

	choices := make([]Choice, 0, len(hits)+1)
	for _, n := range hits {
		id, err := EncodeID(ActionPick, n)
		if err != nil {
			h.log.Errorw("cannot encode search button", "name", n, "error", err)
			return h.apology("search", ev.Chat, err)
		}
		choices = append(choices, Choice{Label: formatName(labelPick, n), ID: id})
	}
	choices = append(choices, doneChoices()...)

	h.sessions.Put(ev.Sender, sess.Offer(product.Normalize(ev.Text), hits))
	return Outcome{Op: "search", Result: ResultOK, Replies: []Reply{
		send(ev.Chat, textFound, choices),
	}}
}

func (h *Handler) onButton(ctx context.Context, ev ButtonPress) Outcome {
	id, ok := DecodeID(ev.ButtonID)
	if !ok {
		h.log.Warnw("unknown button id", "button_id", ev.ButtonID, "sender", ev.Sender)
		return Outcome{Op: "ignore", Result: ResultIgnored}
	}
	sess := h.sessions.Get(ev.Sender)
	scope := h.Scope(ev.Sender)

	switch id.Action {
	case ActionDone:
		text := textAddDone
		if sess.State == dialog.AwaitingSearchQuery {
			text = textSearchDone
		}
		h.sessions.Put(ev.Sender, dialog.Apply(sess, dialog.SignalDone))
		return Outcome{Op: "done", Result: ResultOK, Replies: []Reply{edit(ev, text, nil)}}

	case ActionCancel:
		h.sessions.Put(ev.Sender, dialog.Apply(sess, dialog.SignalCancel))
		return Outcome{Op: "cancel", Result: ResultOK, Replies: []Reply{edit(ev, textCancelled, nil)}}

	case ActionAddSimilar, ActionForceAdd:
		var name product.Name
		if id.Action == ActionForceAdd {
			name = id.Resolve([]product.Name{sess.Typed})
		} else {
			name = id.Resolve(sess.Offered, h.engine.Vocabulary())
		}
		out, text := h.add(ctx, scope, name)

		// The suggestion message is answered; its buttons are gone.
		h.sessions.Put(ev.Sender, sess.Offer("", nil))
		var choices []Choice
		if sess.State.Awaiting() {
			choices = doneChoices()
		}
		out.Replies = []Reply{edit(ev, text, choices)}
		return out

	case ActionPick:
		// Search results stay up so several hits can be picked in a row.
		name := id.Resolve(sess.Offered, h.engine.Vocabulary())
		out, text := h.add(ctx, scope, name)
		out.Replies = []Reply{send(ev.Chat, text, nil)}
		return out

	default:
		h.log.Warnw("button action not valid here", "button_id", ev.ButtonID, "sender", ev.Sender)
		return Outcome{Op: "ignore", Result: ResultIgnored}
	}
}

func (h *Handler) onInlineQuery(ev InlineQuery) Outcome {
	hits := h.engine.Search(ev.Text)
	query := product.Normalize(ev.Text)

	results := make([]InlineResult, 0, len(hits)+1)
	seen := make(map[string]bool, len(hits)+1)
	push := func(a Action, n product.Name, title, desc string) {
		id, err := EncodeID(a, n)
		if err != nil || seen[id] {
			return
		}
		seen[id] = true
		results = append(results, InlineResult{
			ID:          id,
			Title:       title,
			Description: desc,
			MessageText: formatName(inlineMessageText, n),
		})
	}

	if !query.IsEmpty() && !h.engine.HasProduct(query) {
		push(ActionNew, query, formatName(inlineNewTitle, query), inlineNewDesc)
	}
	for _, n := range hits {
		push(ActionInline, n, n.String(), inlineKnownDesc)
	}

	result := ResultOK
	if len(results) == 0 {
		result = ResultNotFound
	}
	return Outcome{Op: "search", Result: result, Replies: []Reply{{
		Kind:    ReplyInline,
		QueryID: ev.QueryID,
		Results: results,
	}}}
}

func (h *Handler) onInlineChoice(ctx context.Context, ev InlineChoice) Outcome {
	id, ok := DecodeID(ev.ResultID)
	if !ok || (id.Action != ActionInline && id.Action != ActionNew) {
		h.log.Warnw("unknown inline result id", "result_id", ev.ResultID, "sender", ev.Sender)
		return Outcome{Op: "ignore", Result: ResultIgnored}
	}

	var name product.Name
	if id.Action == ActionNew {
		name = id.Resolve([]product.Name{product.Normalize(ev.Text)})
	} else {
		name = id.Resolve(h.engine.Vocabulary())
	}

	out, text := h.add(ctx, h.Scope(ev.Sender), name)
	if out.Result == ResultOK {
		text = formatName(textAddedInline, out.Name)
	}
	// Inline mode has no chat of ours; confirm in the private chat.
	out.Replies = []Reply{send(ev.Sender, text, nil)}
	return out
}

// add is the single mutating path behind every way of adding a product.
// It returns the outcome (without replies) and the text to show.
func (h *Handler) add(ctx context.Context, scope product.Scope, name product.Name) (Outcome, string) {
	res, err := h.engine.Add(ctx, scope, name.String())
	switch {
	case err == nil:
		return Outcome{Op: "add", Result: ResultOK, Name: res.Name}, formatName(textAdded, res.Name)
	case engine.IsDuplicate(err):
		return Outcome{Op: "add", Result: ResultDuplicate, Name: res.Name}, formatName(textDuplicate, res.Name)
	case engine.KindOf(err) == engine.KindInvalidName:
		return Outcome{Op: "add", Result: ResultIgnored}, textUseMenu
	default:
		h.log.Errorw("add failed", "scope", scope, "name", name, "error", err)
		return Outcome{Op: "add", Result: ResultFailed, Name: name, Err: err}, textApology
	}
}

func (h *Handler) apology(op string, chat int64, err error) Outcome {
	return Outcome{Op: op, Result: ResultFailed, Err: err, Replies: []Reply{
		sendMenu(chat, textApology),
	}}
}

func suggestionChoices(typed product.Name, similar []product.Name) ([]Choice, error) {
	choices := make([]Choice, 0, len(similar)+2)
	for _, s := range similar {
		id, err := EncodeID(ActionAddSimilar, s)
		if err != nil {
			return nil, err
		}
		choices = append(choices, Choice{Label: formatName(labelAddSimilar, s), ID: id})
	}
	id, err := EncodeID(ActionForceAdd, typed)
	if err != nil {
		return nil, err
	}
	return append(choices,
		Choice{Label: formatName(labelForceAdd, typed), ID: id},
		Choice{Label: labelCancel, ID: string(ActionCancel)},
	), nil
}

func doneChoices() []Choice {
	return []Choice{{Label: labelDone, ID: string(ActionDone)}}
}

func send(chat int64, text string, choices []Choice) Reply {
	return Reply{Kind: ReplySend, Chat: chat, Text: text, Choices: choices}
}

func sendMenu(chat int64, text string) Reply {
	return Reply{Kind: ReplySend, Chat: chat, Text: text, Menu: true}
}

func edit(ev ButtonPress, text string, choices []Choice) Reply {
	return Reply{Kind: ReplyEdit, Chat: ev.Chat, Message: ev.Message, Text: text, Choices: choices}
}
