package testutil

// FixedRunID generates the same run identifier every time.
//
// Catalog rows keyed by it come out byte-identical across repeated runs
// of the same scenario, which is what golden comparison needs.
//
// Thread-safety: FixedRunID is stateless after construction and safe
// for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed run-ID generator. An empty id defaults
// to "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunID) Generate() string {
	return g.id
}
