// Package memtracer connects a simulated processor's memory accesses to
// cache simulators. A tracer declares which access types it cares about and
// receives every access the processor performs.
package memtracer

// AccessType classifies a traced memory access.
type AccessType int

// The three kinds of accesses a processor performs.
const (
	Fetch AccessType = iota
	Load
	Store
)

func (t AccessType) String() string {
	switch t {
	case Fetch:
		return "fetch"
	case Load:
		return "load"
	case Store:
		return "store"
	default:
		return "unknown"
	}
}

// A Tracer observes the memory accesses of a simulated processor.
type Tracer interface {
	// InterestedInRange reports whether the tracer wants accesses of the
	// given type over [begin, end).
	InterestedInRange(begin, end uint64, t AccessType) bool

	// Trace reports one access.
	Trace(addr, bytes uint64, t AccessType)
}

// A Sim is the cache surface a tracer drives.
type Sim interface {
	Access(addr, bytes uint64, store bool)
}
