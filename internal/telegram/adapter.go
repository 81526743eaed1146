// Package telegram connects the bot to the Telegram Bot API through
// telebot. Inbound updates are decoded into bot events and queued; the
// Adapter also implements bot.Gateway for the replies.
package telegram

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"

	"github.com/roach88/shoplist/internal/bot"
)

// Sink receives decoded events. Implemented by *bot.Loop.
type Sink interface {
	Enqueue(ev bot.Event) bool
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev bot.Event) bool

// Enqueue calls f(ev).
func (f SinkFunc) Enqueue(ev bot.Event) bool { return f(ev) }

// Config configures the adapter.
type Config struct {
	Token string

	// PollTimeout is the long-polling timeout sent to getUpdates.
	PollTimeout time.Duration

	// SendTimeout bounds one HTTP call on top of the poll timeout.
	SendTimeout time.Duration

	// RateLimit caps outbound calls per second. Zero disables the limit.
	RateLimit float64

	// URL overrides the API endpoint (tests).
	URL string

	// Offline skips the getMe handshake (tests).
	Offline bool
}

// Adapter is the Telegram gateway.
type Adapter struct {
	bot     *tele.Bot
	sink    Sink
	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

// New creates the telebot client and registers the update handlers.
func New(cfg Config, sink Sink, log *zap.SugaredLogger) (*Adapter, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: empty bot token")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	a := &Adapter{
		sink:    sink,
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     log.With("component", "telegram"),
	}
	if cfg.RateLimit > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	// Handlers run on the poller goroutine so updates reach the sink in the
	// order Telegram sent them. Enqueue does not block.
	b, err := tele.NewBot(tele.Settings{
		Token:       cfg.Token,
		URL:         cfg.URL,
		Poller:      &tele.LongPoller{Timeout: cfg.PollTimeout},
		Client:      &http.Client{Timeout: cfg.PollTimeout + cfg.SendTimeout},
		Offline:     cfg.Offline,
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			a.log.Errorw("telegram handler error", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	a.bot = b
	a.register()
	return a, nil
}

func (a *Adapter) register() {
	a.bot.Handle(tele.OnText, func(c tele.Context) error {
		a.push(decodeText(c.Message()))
		return nil
	})
	a.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		a.push(decodeCallback(c.Callback()))
		return nil
	})
	a.bot.Handle(tele.OnQuery, func(c tele.Context) error {
		a.push(decodeQuery(c.Query()))
		return nil
	})
	a.bot.Handle(tele.OnInlineResult, func(c tele.Context) error {
		a.push(decodeInlineResult(c.InlineResult()))
		return nil
	})
}

func (a *Adapter) push(ev bot.Event, ok bool) {
	if !ok {
		return
	}
	if !a.sink.Enqueue(ev) {
		a.log.Warnw("event dropped, loop stopped", "event", ev.Kind(), "sender", ev.SenderID())
	}
}

// Start polls for updates until Stop. Blocks.
func (a *Adapter) Start() {
	a.log.Infow("polling for updates", "bot", a.bot.Me.Username)
	a.bot.Start()
}

// Stop ends polling.
func (a *Adapter) Stop() {
	a.bot.Stop()
}
