package memtracer

// An ICache routes instruction fetches into a cache simulator, ignoring
// data accesses.
type ICache struct {
	cache Sim
}

// NewICache wraps a cache as an instruction-fetch tracer.
func NewICache(cache Sim) *ICache {
	return &ICache{cache: cache}
}

// InterestedInRange reports true only for fetches.
func (c *ICache) InterestedInRange(_, _ uint64, t AccessType) bool {
	return t == Fetch
}

// Trace simulates a fetch as a read access.
func (c *ICache) Trace(addr, bytes uint64, t AccessType) {
	if t == Fetch {
		c.cache.Access(addr, bytes, false)
	}
}

// A DCache routes loads and stores into a cache simulator, ignoring
// instruction fetches.
type DCache struct {
	cache Sim
}

// NewDCache wraps a cache as a data-access tracer.
func NewDCache(cache Sim) *DCache {
	return &DCache{cache: cache}
}

// InterestedInRange reports true only for loads and stores.
func (c *DCache) InterestedInRange(_, _ uint64, t AccessType) bool {
	return t == Load || t == Store
}

// Trace simulates a load or store.
func (c *DCache) Trace(addr, bytes uint64, t AccessType) {
	if t == Load || t == Store {
		c.cache.Access(addr, bytes, t == Store)
	}
}
