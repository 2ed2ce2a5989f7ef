package pipeline

import "github.com/google/uuid"

// RunIDGenerator produces identifiers for pipeline runs.
//
// Production code uses UUIDv7Generator. Tests inject a fixed generator so
// reports and golden files are byte-stable across runs.
type RunIDGenerator interface {
	// NewRunID returns a new unique run identifier.
	NewRunID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, making run IDs
// sortable by creation time. Output directories and log lines listed
// lexically then come out in chronological order.
//
// Uses github.com/google/uuid for RFC 4122 compliant UUIDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewRunID creates a new UUIDv7 and returns it as a hyphenated string.
//
// Format: "550e8400-e29b-41d4-a716-446655440000" (36 characters)
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}
