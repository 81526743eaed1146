package harness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/roach88/shoplist/internal/bot"
	"github.com/roach88/shoplist/internal/dialog"
	"github.com/roach88/shoplist/internal/engine"
	"github.com/roach88/shoplist/internal/journal"
	"github.com/roach88/shoplist/internal/product"
	"github.com/roach88/shoplist/internal/store"
	"github.com/roach88/shoplist/internal/testutil"
)

// StepTimeout bounds how long Run waits for one event to be handled.
const StepTimeout = 5 * time.Second

// ErrSaveFailed is what the in-memory store returns for a step with
// save_fails set.
var ErrSaveFailed = errors.New("disk full")

// Epoch is the harness clock's start time.
var Epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// memStore keeps saves in memory and fails them on request.
type memStore struct {
	mu    sync.Mutex
	fail  bool
	saves int
}

func (m *memStore) Save(ctx context.Context, st *product.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrSaveFailed
	}
	m.saves++
	return nil
}

func (m *memStore) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// recorder is the loop's journal. Every entry is handed to Run, which
// uses it to know an event is fully handled.
type recorder struct {
	entries chan journal.Entry
}

func (r *recorder) Append(ctx context.Context, e journal.Entry) error {
	r.entries <- e
	return nil
}

// Harness wires a real bot loop to fakes: an in-memory store, a recording
// gateway, a fixed clock and sequential flow ids.
type Harness struct {
	scenario *Scenario
	store    *memStore
	engine   *engine.Engine
	gateway  *testutil.FakeGateway
	journal  *recorder
	loop     *bot.Loop
}

// New prepares a harness for s. Nothing runs until Run.
func New(s *Scenario) *Harness {
	mode := store.Mode(s.Scope)
	if mode == "" {
		mode = store.ModeShared
	}

	ms := &memStore{}
	eng := engine.New(ms, seedState(s.Seed))
	gw := testutil.NewFakeGateway()
	rec := &recorder{entries: make(chan journal.Entry, 1)}
	clock := testutil.NewClock(Epoch, time.Second)

	handler := bot.NewHandler(eng, dialog.NewSessions(dialog.WithNow(clock.Now)), mode, nil)
	loop := bot.NewLoop(handler, gw,
		bot.WithJournal(rec),
		bot.WithFlowGenerator(testutil.NewSequentialFlowGenerator("flow")),
		bot.WithClock(clock.Now),
	)

	return &Harness{
		scenario: s,
		store:    ms,
		engine:   eng,
		gateway:  gw,
		journal:  rec,
		loop:     loop,
	}
}

// Run executes a scenario in a fresh harness and returns the result.
// An error means the scenario could not be executed; expectation
// mismatches are reported in Result.Errors.
func Run(s *Scenario) (*Result, error) {
	return New(s).Run(context.Background())
}

// Run delivers every step, waiting for each to be handled before the next.
func (h *Harness) Run(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.loop.Run(ctx) }()
	defer func() {
		h.loop.Stop()
		<-done
	}()

	result := NewResult()
	for i := range h.scenario.Steps {
		sr, err := h.step(ctx, i)
		if err != nil {
			return nil, err
		}
		result.Steps = append(result.Steps, sr)
		checkStep(result, i, h.scenario.Steps[i].Expect, sr)
	}

	h.collectState(result)
	checkFinal(result, h.scenario.Expect)
	return result, nil
}

func (h *Harness) step(ctx context.Context, i int) (StepResult, error) {
	st := &h.scenario.Steps[i]
	ev := st.event(i)

	h.store.setFail(st.SaveFails)
	defer h.store.setFail(false)
	for _, op := range st.GatewayDown {
		h.gateway.Fail(op)
	}
	defer func() {
		for _, op := range st.GatewayDown {
			h.gateway.Recover(op)
		}
	}()

	before := len(h.gateway.Calls())
	if !h.loop.Enqueue(ev) {
		return StepResult{}, fmt.Errorf("step %d: loop rejected event", i+1)
	}

	// The journal entry is written after the last reply went out.
	select {
	case entry := <-h.journal.entries:
		return StepResult{Event: ev, Entry: entry, Calls: h.gateway.Calls()[before:]}, nil
	case <-time.After(StepTimeout):
		return StepResult{}, fmt.Errorf("step %d: event not handled within %s", i+1, StepTimeout)
	case <-ctx.Done():
		return StepResult{}, ctx.Err()
	}
}

func (h *Harness) collectState(r *Result) {
	snap := h.engine.Snapshot()
	for _, sc := range snap.Scopes() {
		r.Lists[string(sc)] = product.Names(snap.List(sc))
	}
	r.Vocabulary = product.Names(snap.Vocabulary.Sorted())
	r.Saves = h.store.count()
}

// seedState builds the initial state. Names are normalized the way the
// store does when loading a file.
func seedState(seed Seed) *product.State {
	st := product.NewState()
	scopes := make([]string, 0, len(seed.Lists))
	for sc := range seed.Lists {
		scopes = append(scopes, sc)
	}
	sort.Strings(scopes)
	for _, sc := range scopes {
		st.Lists[product.Scope(sc)] = product.List{}
		for _, raw := range seed.Lists[sc] {
			if n := product.Normalize(raw); !n.IsEmpty() {
				st.Append(product.Scope(sc), n)
			}
		}
	}
	for _, raw := range seed.Vocabulary {
		st.Vocabulary.Add(product.Normalize(raw))
	}
	return st
}
