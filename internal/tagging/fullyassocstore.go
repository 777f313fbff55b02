package tagging

import "sort"

// A fullyAssocStore keeps tags in an ordered mapping from line address to
// entry, conceptually a single set of `ways` slots. Arbitrary insertion and
// removal by key is cheap, which beats scanning a dense array when the way
// count is high.
type fullyAssocStore struct {
	ways    uint64
	lfsr    *LFSR
	entries map[uint64]Entry
	keys    []uint64 // ascending, mirrors entries
}

// NewFullyAssocStore creates an empty store holding at most `ways` lines.
func NewFullyAssocStore(ways uint64, lfsr *LFSR) Store {
	return &fullyAssocStore{
		ways:    ways,
		lfsr:    lfsr,
		entries: make(map[uint64]Entry, ways),
	}
}

func (s *fullyAssocStore) Lookup(lineAddr uint64) (Handle, bool) {
	if _, ok := s.entries[lineAddr]; !ok {
		return 0, false
	}

	return Handle(lineAddr), true
}

func (s *fullyAssocStore) At(h Handle) Entry {
	return s.entries[uint64(h)]
}

// Put stores the entry under its line-address key. An entry whose valid bit
// is clear is removed outright, so an invalidated line can never be found
// again by Lookup.
func (s *fullyAssocStore) Put(h Handle, e Entry) {
	key := uint64(h)

	if !e.Valid() {
		if _, ok := s.entries[key]; ok {
			delete(s.entries, key)
			s.removeKey(key)
		}

		return
	}

	if _, ok := s.entries[key]; !ok {
		s.insertKey(key)
	}

	s.entries[key] = e
}

// Victimize evicts a pseudo-randomly chosen resident line when the store is
// full, then inserts a fresh entry for lineAddr. The random sequence only
// advances when an eviction actually happens.
func (s *fullyAssocStore) Victimize(lineAddr uint64) Entry {
	var ousted Entry

	if uint64(len(s.keys)) == s.ways {
		i := int(uint64(s.lfsr.Next()) % s.ways)
		key := s.keys[i]

		ousted = s.entries[key]
		delete(s.entries, key)
		s.keys = append(s.keys[:i], s.keys[i+1:]...)
	}

	s.Put(Handle(lineAddr), NewEntry(lineAddr))

	return ousted
}

func (s *fullyAssocStore) insertKey(key uint64) {
	i := sort.Search(len(s.keys), func(i int) bool {
		return s.keys[i] >= key
	})

	s.keys = append(s.keys, 0)
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = key
}

func (s *fullyAssocStore) removeKey(key uint64) {
	i := sort.Search(len(s.keys), func(i int) bool {
		return s.keys[i] >= key
	})

	if i < len(s.keys) && s.keys[i] == key {
		s.keys = append(s.keys[:i], s.keys[i+1:]...)
	}
}
