package bot

import (
	"fmt"
	"strings"

	"github.com/roach88/shoplist/internal/product"
)

// ReplyKind selects the Gateway call that delivers a Reply.
type ReplyKind int

const (
	// ReplySend sends a new message (SendText or SendTextWithChoices).
	ReplySend ReplyKind = iota + 1
	// ReplyEdit rewrites the message the pressed button belongs to.
	ReplyEdit
	// ReplyInline answers an inline query.
	ReplyInline
)

func (k ReplyKind) String() string {
	switch k {
	case ReplySend:
		return "send"
	case ReplyEdit:
		return "edit"
	case ReplyInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Choice is one inline button.
type Choice struct {
	Label string
	ID    string
}

// InlineResult is one article offered in inline mode. Selecting it posts
// MessageText into the chat.
type InlineResult struct {
	ID          string
	Title       string
	Description string
	MessageText string
}

// Reply is one outbound message produced by the Handler.
type Reply struct {
	Kind ReplyKind

	Chat int64
	Text string

	// Choices are rendered as an inline keyboard, one button per row.
	Choices []Choice

	// Menu attaches the main-menu reply keyboard.
	Menu bool

	// Message is the target of a ReplyEdit.
	Message MessageRef

	// QueryID and Results are set for ReplyInline.
	QueryID string
	Results []InlineResult
}

// User-facing texts.
const textGreeting = "👋 Вітаю!\nЯ допоможу вести поточний список покупок.\n\n" +
	"➕ Додати товар: пиши назви, по одній у повідомленні.\n" +
	"📋 Поточний список: показати, що треба купити.\n" +
	"🔍 Пошук: знайти товар серед відомих.\n" +
	"✅ Список виконано: очистити список після покупок.\n\n" +
	"У будь-якому чаті можна набрати @бота і назву товару."

const (
	textAddPrompt    = "✍️ Напиши назву товару.\nМожеш надсилати кілька повідомлень підряд."
	textSearchPrompt = "🔍 Напиши частину назви товару."
	textDidYouMean   = "🤔 Можливо, ти мав(ла) на увазі:"
	textDuplicate    = "ℹ️ «%s» вже є у поточному списку."
	textAdded        = "✅ «%s» додано.\nМожеш продовжувати."
	textAddedInline  = "✅ «%s» додано до списку."
	textAddDone      = "👌 Режим додавання завершено"
	textSearchDone   = "👌 Пошук завершено"
	textCancelled    = "❌ Дію скасовано"
	textListEmpty    = "🛒 Поточний список порожній"
	textListHeader   = "📝 Поточний список:"
	textCleared      = "🎉 Поточний список очищено!"
	textFound        = "🔎 Знайдено. Натисни, щоб додати:"
	textNotFound     = "🤷 Нічого не знайдено. Спробуй інакше."
	textUseMenu      = "Скористайся меню 👇"
	textApology      = "😔 Щось пішло не так. Спробуй ще раз трохи пізніше."

	labelDone       = "✅ Готово"
	labelCancel     = "❌ Скасувати"
	labelAddSimilar = "➕ Додати «%s»"
	labelForceAdd   = "➕ Все одно додати «%s»"
	labelPick       = "➕ %s"

	inlineNewTitle    = "➕ Додати «%s»"
	inlineNewDesc     = "Новий товар"
	inlineKnownDesc   = "Додати до списку"
	inlineMessageText = "🛒 %s"
)

func formatList(items []product.Name) string {
	if len(items) == 0 {
		return textListEmpty
	}
	var sb strings.Builder
	sb.WriteString(textListHeader)
	for _, it := range items {
		sb.WriteString("\n• ")
		sb.WriteString(it.String())
	}
	return sb.String()
}

func formatName(format string, name product.Name) string {
	return fmt.Sprintf(format, name)
}
