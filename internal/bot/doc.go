// Package bot turns gateway events into list-engine operations and replies.
//
// ARCHITECTURE:
//
// Gateway boundary:
// The transport adapter decodes every update exactly once into one of the
// Event types below. Nothing past this point compares raw button labels.
//
// Single-Writer Event Loop:
// Loop owns a FIFO queue. Adapters Enqueue from any goroutine; Run handles
// one event to completion (engine operation, persistence, replies) before
// taking the next. Handler is only ever called from the Run goroutine.
//
// Event Processing Flow:
//  1. Adapter decodes an update and calls Loop.Enqueue
//  2. Run dequeues it and tags it with a flow id for log correlation
//  3. Handler consults the sender's dialog session and runs one operation
//  4. Replies are delivered through the Gateway with a bounded timeout
//  5. The outcome is journaled and counted
//
// Delivery failures are logged and counted but never roll back state: by
// the time a reply is sent the operation has already been persisted.
package bot
