package harness

import (
	"github.com/roach88/shoplist/internal/bot"
	"github.com/roach88/shoplist/internal/journal"
	"github.com/roach88/shoplist/internal/testutil"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool

	// Steps holds one entry per scenario step, in order.
	Steps []StepResult

	// Errors contains expectation mismatches. Empty if Pass is true.
	Errors []string

	// Lists and Vocabulary are the state after the last step.
	Lists      map[string][]string
	Vocabulary []string

	// Saves counts successful saves.
	Saves int
}

// StepResult is what one event produced.
type StepResult struct {
	Event bot.Event

	// Entry is the journal record the loop wrote for the event.
	Entry journal.Entry

	// Calls are the gateway calls made while handling the event.
	Calls []testutil.Call
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Lists:  make(map[string][]string),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
