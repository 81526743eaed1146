package bot

import (
	"strings"
)

// Event is one decoded inbound gateway event. The set of implementations is
// closed: TextMessage, MenuSelect, ButtonPress, InlineQuery, InlineChoice.
type Event interface {
	// SenderID identifies the user who caused the event.
	SenderID() int64
	// Kind names the event type for logs, metrics and the journal.
	Kind() string

	isEvent()
}

// TextMessage is free text typed by the user.
type TextMessage struct {
	Sender int64
	Chat   int64
	Text   string
}

// MenuSelect is a main-menu press or a bot command.
type MenuSelect struct {
	Sender int64
	Chat   int64
	Item   MenuItem
}

// ButtonPress is a tap on an inline button under one of our messages.
type ButtonPress struct {
	Sender     int64
	Chat       int64
	CallbackID string
	Message    MessageRef
	ButtonID   string
}

// InlineQuery is as-you-type input in inline mode.
type InlineQuery struct {
	Sender  int64
	QueryID string
	Text    string
}

// InlineChoice reports which inline result the user picked.
type InlineChoice struct {
	Sender   int64
	ResultID string
	Text     string
}

func (e TextMessage) SenderID() int64  { return e.Sender }
func (e MenuSelect) SenderID() int64   { return e.Sender }
func (e ButtonPress) SenderID() int64  { return e.Sender }
func (e InlineQuery) SenderID() int64  { return e.Sender }
func (e InlineChoice) SenderID() int64 { return e.Sender }

func (TextMessage) Kind() string  { return "text" }
func (MenuSelect) Kind() string   { return "menu" }
func (ButtonPress) Kind() string  { return "button" }
func (InlineQuery) Kind() string  { return "inline_query" }
func (InlineChoice) Kind() string { return "inline_choice" }

func (TextMessage) isEvent()  {}
func (MenuSelect) isEvent()   {}
func (ButtonPress) isEvent()  {}
func (InlineQuery) isEvent()  {}
func (InlineChoice) isEvent() {}

// MessageRef points at a message the bot sent earlier.
type MessageRef struct {
	Chat      int64
	MessageID string
}

// MenuItem is a main-menu entry.
type MenuItem int

const (
	MenuStart MenuItem = iota + 1
	MenuHelp
	MenuAdd
	MenuShowList
	MenuClear
	MenuSearch
)

func (m MenuItem) String() string {
	switch m {
	case MenuStart:
		return "start"
	case MenuHelp:
		return "help"
	case MenuAdd:
		return "add"
	case MenuShowList:
		return "show_list"
	case MenuClear:
		return "clear"
	case MenuSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Main menu labels, in keyboard order.
const (
	LabelAdd    = "➕ Додати товар"
	LabelList   = "📋 Поточний список"
	LabelSearch = "🔍 Пошук"
	LabelClear  = "✅ Список виконано"
)

// MenuLayout is the reply keyboard, one slice per row.
var MenuLayout = [][]string{
	{LabelAdd},
	{LabelList, LabelSearch},
	{LabelClear},
}

var menuByLabel = map[string]MenuItem{
	LabelAdd:    MenuAdd,
	LabelList:   MenuShowList,
	LabelSearch: MenuSearch,
	LabelClear:  MenuClear,
}

var menuByCommand = map[string]MenuItem{
	"/start":  MenuStart,
	"/help":   MenuHelp,
	"/add":    MenuAdd,
	"/list":   MenuShowList,
	"/done":   MenuClear,
	"/search": MenuSearch,
}

// DecodeMenu recognizes menu labels and commands ("/list", "/list@mybot",
// "/start payload"). Any other text is not a menu press.
func DecodeMenu(text string) (MenuItem, bool) {
	text = strings.TrimSpace(text)
	if item, ok := menuByLabel[text]; ok {
		return item, true
	}
	if !strings.HasPrefix(text, "/") {
		return 0, false
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	item, ok := menuByCommand[strings.ToLower(cmd)]
	return item, ok
}

// Decode classifies a plain text update as a menu press or free text.
func Decode(sender, chat int64, text string) Event {
	if item, ok := DecodeMenu(text); ok {
		return MenuSelect{Sender: sender, Chat: chat, Item: item}
	}
	return TextMessage{Sender: sender, Chat: chat, Text: text}
}
