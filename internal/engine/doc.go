// Package engine implements the list engine: the in-memory operations over
// the shopping state and the only place that mutates it.
//
// Operations:
//   - IsPresent: exact membership check in one scope's list
//   - Add: the single mutating entry point for every add path
//   - Suggest: near-duplicate detection against the vocabulary
//   - Search: substring lookup over the vocabulary
//   - Clear: empty one scope's list, vocabulary untouched
//
// PERSISTENCE:
//
// Mutations are applied to a clone of the live state, the clone is saved,
// and only a successful save swaps it in. A failed or cancelled save leaves
// memory and disk exactly as they were before the call.
//
// CONCURRENCY:
//
// The bot feeds the engine from a single-writer loop, but the CLI and the
// ops server may read concurrently, so every method takes the engine mutex.
package engine
