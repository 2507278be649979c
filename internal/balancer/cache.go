package balancer

// Cache memoizes op models already validated in the current run, together
// with their cycle estimate. It is a performance aid only: a miss must cost
// nothing but a fresh evaluation.
type Cache interface {
	Has(id uint64) bool
	// Cycles returns the estimate recorded when id was validated.
	Cycles(id uint64) (int, bool)
	MarkValidated(id uint64, cycles int)
	Len() int
}

// ValidatedCache is the per-run Cache. It is not safe for concurrent use.
type ValidatedCache struct {
	entries map[uint64]int
}

// NewValidatedCache returns an empty cache.
func NewValidatedCache() *ValidatedCache {
	return &ValidatedCache{entries: make(map[uint64]int)}
}

func (c *ValidatedCache) Has(id uint64) bool {
	_, ok := c.entries[id]
	return ok
}

func (c *ValidatedCache) Cycles(id uint64) (int, bool) {
	cycles, ok := c.entries[id]
	return cycles, ok
}

func (c *ValidatedCache) MarkValidated(id uint64, cycles int) {
	c.entries[id] = cycles
}

func (c *ValidatedCache) Len() int {
	return len(c.entries)
}

// DisabledCache returns a Cache that never remembers anything.
func DisabledCache() Cache {
	return disabledCache{}
}

type disabledCache struct{}

func (disabledCache) Has(uint64) bool { return false }

func (disabledCache) Cycles(uint64) (int, bool) { return 0, false }

func (disabledCache) MarkValidated(uint64, int) {}

func (disabledCache) Len() int { return 0 }
