package bot

import (
	"strings"

	"github.com/roach88/shoplist/internal/engine"
	"github.com/roach88/shoplist/internal/product"
	"github.com/roach88/shoplist/internal/store"
)

// Action is the verb part of a button or inline result id.
type Action string

const (
	ActionAddSimilar Action = "add_similar"
	ActionForceAdd   Action = "force_add"
	ActionPick       Action = "pick"
	ActionDone       Action = "done"
	ActionCancel     Action = "cancel"

	// Inline result ids.
	ActionInline Action = "inline"
	ActionNew    Action = "new"
)

func (a Action) prefix() string { return string(a) + ":" }

// takesName reports whether ids of this action carry a product name.
func (a Action) takesName() bool {
	switch a {
	case ActionAddSimilar, ActionForceAdd, ActionPick, ActionInline, ActionNew:
		return true
	default:
		return false
	}
}

// ID is a decoded button or inline result id. Payload is the possibly
// truncated name and must be resolved before use.
type ID struct {
	Action  Action
	Payload string
}

// EncodeID builds "<action>:<name>" with the name truncated to fit the
// transport ceiling, or the bare action for done and cancel.
func EncodeID(a Action, name product.Name) (string, error) {
	if !a.takesName() {
		return string(a), nil
	}
	prefix := a.prefix()
	id := prefix + store.TruncateForTransport(name.String(), prefix)
	if len(id) > store.MaxTransportBytes {
		return "", engine.NewTransportLimitError(id, len(id), store.MaxTransportBytes)
	}
	return id, nil
}

// DecodeID parses an id produced by EncodeID.
func DecodeID(raw string) (ID, bool) {
	action, payload, hasPayload := strings.Cut(raw, ":")
	a := Action(action)
	switch {
	case !hasPayload && (a == ActionDone || a == ActionCancel):
		return ID{Action: a}, true
	case hasPayload && a.takesName() && payload != "":
		return ID{Action: a, Payload: payload}, true
	default:
		return ID{}, false
	}
}

// Resolve maps a payload back to the full name it was encoded from. The
// candidate sets are tried in order; the first name whose encoding equals
// the payload wins. Without a match the payload itself is taken as the name.
func (id ID) Resolve(candidates ...[]product.Name) product.Name {
	prefix := id.Action.prefix()
	for _, set := range candidates {
		for _, c := range set {
			if store.TruncateForTransport(c.String(), prefix) == id.Payload {
				return c
			}
		}
	}
	return product.Normalize(id.Payload)
}
