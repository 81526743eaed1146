// Package dialog tracks where each sender is in a conversation.
//
// The transition function is pure; Sessions is the in-memory store that
// keeps one Session per sender between events.
package dialog

import "github.com/roach88/shoplist/internal/product"

// State is a conversation state.
type State int

const (
	// Idle: no flow in progress; free text is not a product name.
	Idle State = iota
	// AwaitingProductName: every non-menu text is a product to add.
	AwaitingProductName
	// AwaitingSearchQuery: every non-menu text is a search query.
	AwaitingSearchQuery
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingProductName:
		return "awaiting_product_name"
	case AwaitingSearchQuery:
		return "awaiting_search_query"
	default:
		return "unknown"
	}
}

// Awaiting reports whether s expects free-text input.
func (s State) Awaiting() bool {
	return s == AwaitingProductName || s == AwaitingSearchQuery
}

// Signal drives a transition.
type Signal int

const (
	// SignalStartAdd enters AwaitingProductName.
	SignalStartAdd Signal = iota + 1
	// SignalStartSearch enters AwaitingSearchQuery.
	SignalStartSearch
	// SignalDone finishes the current flow.
	SignalDone
	// SignalCancel abandons the current flow.
	SignalCancel
	// SignalMenu is any menu or navigation press that does not start a flow.
	SignalMenu
)

// Next returns the state after sig. Anything that is not a flow start
// returns to Idle, so a menu press always leaves an awaiting state before
// the menu action runs.
func Next(s State, sig Signal) State {
	switch sig {
	case SignalStartAdd:
		return AwaitingProductName
	case SignalStartSearch:
		return AwaitingSearchQuery
	case SignalDone, SignalCancel, SignalMenu:
		return Idle
	default:
		return s
	}
}

// Session is the per-sender conversation record.
type Session struct {
	State State

	// Offered holds the names behind the buttons of the last choice message
	// (suggestions or search hits), used to resolve truncated button ids.
	Offered []product.Name

	// Typed is the name the user entered when suggestions were shown; the
	// "add anyway" button refers to it.
	Typed product.Name
}

// Apply runs the transition on a session. Leaving a flow drops the offered
// choices with it.
func Apply(sess Session, sig Signal) Session {
	next := Next(sess.State, sig)
	if next != sess.State || !next.Awaiting() {
		sess.Offered = nil
		sess.Typed = ""
	}
	sess.State = next
	return sess
}

// Offer records the choices just shown to the user.
func (s Session) Offer(typed product.Name, names []product.Name) Session {
	s.Typed = typed
	s.Offered = append([]product.Name(nil), names...)
	return s
}
