package testutil

// FixedRunIDGenerator returns the same run ID every time.
//
// This enables deterministic pipeline execution and golden snapshot
// comparison: the same scenario with the same FixedRunIDGenerator produces
// byte-identical reports.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator that always returns id.
// If id is empty, NewRunID returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// NewRunID returns the fixed run ID.
//
// Implements pipeline.RunIDGenerator.
func (g *FixedRunIDGenerator) NewRunID() string {
	return g.id
}
