package tagging

// A setAssocStore keeps tags in a fixed sets-by-ways table. The set index
// is the low bits of the line address, so the set count must be a power of
// two.
type setAssocStore struct {
	sets  uint64
	ways  uint64
	lfsr  *LFSR
	slots []Entry
}

// NewSetAssocStore creates a store with sets*ways slots, all empty.
func NewSetAssocStore(sets, ways uint64, lfsr *LFSR) Store {
	return &setAssocStore{
		sets:  sets,
		ways:  ways,
		lfsr:  lfsr,
		slots: make([]Entry, sets*ways),
	}
}

func (s *setAssocStore) setBase(lineAddr uint64) uint64 {
	return (lineAddr & (s.sets - 1)) * s.ways
}

// Lookup scans the ways of the line's set, comparing with the dirty bit
// masked out.
func (s *setAssocStore) Lookup(lineAddr uint64) (Handle, bool) {
	base := s.setBase(lineAddr)
	want := NewEntry(lineAddr)

	for i := uint64(0); i < s.ways; i++ {
		if s.slots[base+i].WithoutDirty() == want {
			return Handle(base + i), true
		}
	}

	return 0, false
}

func (s *setAssocStore) At(h Handle) Entry {
	return s.slots[h]
}

func (s *setAssocStore) Put(h Handle, e Entry) {
	s.slots[h] = e
}

// Victimize picks a pseudo-random way within the line's set, replaces it
// with a fresh entry for lineAddr, and returns the previous occupant.
func (s *setAssocStore) Victimize(lineAddr uint64) Entry {
	base := s.setBase(lineAddr)
	way := uint64(s.lfsr.Next()) % s.ways

	ousted := s.slots[base+way]
	s.slots[base+way] = NewEntry(lineAddr)

	return ousted
}
