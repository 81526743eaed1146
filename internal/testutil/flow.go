// Package testutil holds deterministic stand-ins shared by tests: flow ids,
// a stepping clock and a recording gateway.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialFlowGenerator returns "<prefix>-1", "<prefix>-2", ... so golden
// transcripts and journal rows are stable across runs.
//
// Thread-safety: safe for concurrent use.
type SequentialFlowGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialFlowGenerator creates a generator. An empty prefix means "flow".
func NewSequentialFlowGenerator(prefix string) *SequentialFlowGenerator {
	if prefix == "" {
		prefix = "flow"
	}
	return &SequentialFlowGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialFlowGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
