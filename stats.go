package cachesim

import (
	"fmt"
	"io"
)

// Stats holds the access counters of one cache instance. All counters are
// monotonically non-decreasing for the life of the cache.
type Stats struct {
	ReadAccesses  uint64
	ReadMisses    uint64
	BytesRead     uint64
	WriteAccesses uint64
	WriteMisses   uint64
	BytesWritten  uint64
	Writebacks    uint64
}

// MissRate returns the overall miss percentage. A cache that has seen no
// accesses reports 0.
func (s Stats) MissRate() float64 {
	accesses := s.ReadAccesses + s.WriteAccesses
	if accesses == 0 {
		return 0
	}

	return 100 * float64(s.ReadMisses+s.WriteMisses) / float64(accesses)
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// ReportStats writes the statistics summary, one name-prefixed line per
// metric.
func (c *Cache) ReportStats(w io.Writer) {
	s := c.stats

	fmt.Fprintf(w, "%s Bytes Read:            %d\n", c.name, s.BytesRead)
	fmt.Fprintf(w, "%s Bytes Written:         %d\n", c.name, s.BytesWritten)
	fmt.Fprintf(w, "%s Read Accesses:         %d\n", c.name, s.ReadAccesses)
	fmt.Fprintf(w, "%s Write Accesses:        %d\n", c.name, s.WriteAccesses)
	fmt.Fprintf(w, "%s Read Misses:           %d\n", c.name, s.ReadMisses)
	fmt.Fprintf(w, "%s Write Misses:          %d\n", c.name, s.WriteMisses)
	fmt.Fprintf(w, "%s Writebacks:            %d\n", c.name, s.Writebacks)
	fmt.Fprintf(w, "%s Miss Rate:             %.3f%%\n", c.name, s.MissRate())
}
