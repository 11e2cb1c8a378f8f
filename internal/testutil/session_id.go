package testutil

// FixedSessionIDs generates the same session ID every time.
//
// This enables deterministic test execution and golden snapshot comparison:
// the same routine with the same FixedSessionIDs produces byte-identical
// traces.
//
// Thread-safety: FixedSessionIDs is stateless and safe for concurrent use.
type FixedSessionIDs struct {
	id string
}

// NewFixedSessionIDs creates a fixed generator. If id is empty, Generate()
// returns "test-session-default".
func NewFixedSessionIDs(id string) *FixedSessionIDs {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionIDs{id: id}
}

// Generate returns the fixed session ID.
//
// Implements trace.SessionIDGenerator.
func (g *FixedSessionIDs) Generate() string {
	return g.id
}
