package bot

import "github.com/google/uuid"

// FlowGenerator produces correlation ids, one per handled event.
type FlowGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 flow ids, so log lines of
// consecutive events sort in arrival order.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
