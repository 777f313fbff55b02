package memtracer

// A List fans a traced access out to every registered tracer that is
// interested in it. It implements Tracer itself, so a whole group of caches
// hangs off a single trace point.
type List struct {
	tracers []Tracer
}

// NewList creates an empty tracer list.
func NewList() *List {
	return &List{}
}

// Empty reports whether no tracer is hooked.
func (l *List) Empty() bool {
	return len(l.tracers) == 0
}

// Hook registers a tracer.
func (l *List) Hook(t Tracer) {
	l.tracers = append(l.tracers, t)
}

// Unhook removes a previously hooked tracer.
func (l *List) Unhook(t Tracer) {
	for i, tracer := range l.tracers {
		if tracer == t {
			l.tracers = append(l.tracers[:i], l.tracers[i+1:]...)
			return
		}
	}
}

// InterestedInRange reports whether any hooked tracer is interested.
func (l *List) InterestedInRange(begin, end uint64, t AccessType) bool {
	for _, tracer := range l.tracers {
		if tracer.InterestedInRange(begin, end, t) {
			return true
		}
	}

	return false
}

// Trace dispatches the access to every interested tracer.
func (l *List) Trace(addr, bytes uint64, t AccessType) {
	for _, tracer := range l.tracers {
		if tracer.InterestedInRange(addr, addr+bytes, t) {
			tracer.Trace(addr, bytes, t)
		}
	}
}
