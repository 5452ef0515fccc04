package gateway

import (
	"sync"

	"github.com/google/uuid"
)

// RequestIDGenerator produces X-Request-ID values.
type RequestIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 request IDs, so backend
// logs sort in the order the client sent requests.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined IDs for testing, then repeats the
// last one.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.ids) == 0 {
		return ""
	}
	if g.idx >= len(g.ids) {
		return g.ids[len(g.ids)-1]
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
