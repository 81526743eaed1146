package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/shoplist/internal/engine"
	"github.com/roach88/shoplist/internal/journal"
	"github.com/roach88/shoplist/internal/metrics"
)

// DefaultSendTimeout bounds one outbound gateway call.
const DefaultSendTimeout = 10 * time.Second

// Journal records handled events. Implemented by *journal.Journal.
type Journal interface {
	Append(ctx context.Context, e journal.Entry) error
}

// Loop is the single-writer event loop.
//
// Thread-safety model:
//   - Enqueue(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Loop struct {
	queue       *eventQueue
	handler     EventHandler
	gateway     Gateway
	journal     Journal
	metrics     *metrics.Metrics
	flowGen     FlowGenerator
	sendTimeout time.Duration
	now         func() time.Time
	log         *zap.SugaredLogger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger. Default: no-op.
func WithLoopLogger(log *zap.SugaredLogger) LoopOption {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithJournal records every outcome in j.
func WithJournal(j Journal) LoopOption {
	return func(l *Loop) { l.journal = j }
}

// WithMetrics counts events and gateway failures in m.
func WithMetrics(m *metrics.Metrics) LoopOption {
	return func(l *Loop) { l.metrics = m }
}

// WithFlowGenerator replaces the UUIDv7 flow ids (tests).
func WithFlowGenerator(g FlowGenerator) LoopOption {
	return func(l *Loop) { l.flowGen = g }
}

// WithSendTimeout bounds each gateway call. Zero disables the bound.
//
// Default: 10s (DefaultSendTimeout)
func WithSendTimeout(d time.Duration) LoopOption {
	return func(l *Loop) { l.sendTimeout = d }
}

// WithClock replaces time.Now for journal timestamps and durations.
func WithClock(now func() time.Time) LoopOption {
	return func(l *Loop) { l.now = now }
}

// NewLoop creates a loop that hands events to h and replies through gw.
func NewLoop(h EventHandler, gw Gateway, opts ...LoopOption) *Loop {
	l := &Loop{
		queue:       newEventQueue(),
		handler:     h,
		gateway:     gw,
		flowGen:     UUIDv7Generator{},
		sendTimeout: DefaultSendTimeout,
		now:         time.Now,
		log:         zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With("component", "loop")
	return l
}

// Enqueue submits an event. Returns false once the loop is stopped.
func (l *Loop) Enqueue(ev Event) bool {
	if ev == nil {
		return false
	}
	return l.queue.Enqueue(ev)
}

// Pending returns the number of queued events.
func (l *Loop) Pending() int {
	return l.queue.Len()
}

// Run handles events one at a time until ctx is cancelled or Stop is
// called. After Stop, events already queued are still handled.
//
// Failures inside an event are logged and the loop moves on; Run returns
// only ctx.Err() or nil.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Infow("loop starting")

	for {
		if ev, ok := l.queue.TryDequeue(); ok {
			l.process(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			l.log.Infow("loop stopping: context cancelled")
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			// The signal channel is closed by Stop; drain first.
			if l.queue.Len() == 0 && l.stopped() {
				l.log.Infow("loop stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop rejects new events; Run returns once the queue is drained.
func (l *Loop) Stop() {
	l.queue.Close()
}

func (l *Loop) stopped() bool {
	l.queue.mu.Lock()
	defer l.queue.mu.Unlock()
	return l.queue.closed
}

// process handles one event. Called only from Run.
func (l *Loop) process(ctx context.Context, ev Event) {
	flow := l.flowGen.Generate()
	start := l.now()
	log := l.log.With("flow", flow, "event", ev.Kind(), "sender", ev.SenderID())
	log.Debugw("handling event")

	out := l.handler.Handle(ctx, ev)

	if out.Err != nil {
		log.Warnw("event failed",
			"op", out.Op,
			"kind", engine.KindOf(out.Err),
			"error", out.Err,
		)
	} else {
		log.Debugw("event handled", "op", out.Op, "result", out.Result, "name", out.Name)
	}

	if bp, ok := ev.(ButtonPress); ok {
		l.deliver(ctx, log, "answer_button", func(ctx context.Context) error {
			if err := l.gateway.AnswerButton(ctx, bp.CallbackID); err != nil {
				return engine.NewGatewayError("answer_button", err)
			}
			return nil
		})
	}
	for _, r := range out.Replies {
		l.deliver(ctx, log, r.Kind.String(), func(ctx context.Context) error {
			return Deliver(ctx, l.gateway, r)
		})
	}

	l.metrics.ObserveEvent(ev.Kind(), out.Result, l.now().Sub(start))
	l.record(ctx, log, flow, start, ev, out)
}

// deliver runs one gateway call under the send timeout. Failures are
// logged and counted; the state change they report on stays committed.
func (l *Loop) deliver(ctx context.Context, log *zap.SugaredLogger, op string, call func(context.Context) error) {
	if l.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.sendTimeout)
		defer cancel()
	}
	if err := call(ctx); err != nil {
		l.metrics.GatewayFailure(op)
		log.Errorw("gateway delivery failed", "op", op, "kind", engine.KindOf(err), "error", err)
	}
}

func (l *Loop) record(ctx context.Context, log *zap.SugaredLogger, flow string, at time.Time, ev Event, out Outcome) {
	if l.journal == nil {
		return
	}
	entry := journal.Entry{
		Flow:    flow,
		At:      at,
		Sender:  ev.SenderID(),
		Event:   ev.Kind(),
		Op:      out.Op,
		Result:  out.Result,
		Product: out.Name.String(),
	}
	if out.Err != nil {
		entry.Error = out.Err.Error()
	}
	if err := l.journal.Append(ctx, entry); err != nil {
		log.Warnw("journal append failed", "error", err)
	}
}
