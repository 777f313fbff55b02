package tagging

const (
	validBit uint64 = 1 << 63
	dirtyBit uint64 = 1 << 62
	addrMask uint64 = ^(validBit | dirtyBit)
)

// An Entry is one tag-store slot packed into a 64-bit word. The top bit
// marks the slot valid, the next bit marks it dirty, and the remaining bits
// hold the line address. The zero value is an empty slot.
type Entry uint64

// NewEntry returns a valid, clean entry for the given line address.
func NewEntry(lineAddr uint64) Entry {
	return Entry(lineAddr&addrMask | validBit)
}

// Valid reports whether the slot holds a cached line.
func (e Entry) Valid() bool {
	return uint64(e)&validBit != 0
}

// Dirty reports whether the cached line has been modified since it was
// filled.
func (e Entry) Dirty() bool {
	return uint64(e)&dirtyBit != 0
}

// LineAddress returns the line address stored in the entry.
func (e Entry) LineAddress() uint64 {
	return uint64(e) & addrMask
}

// WithDirty returns the entry with the dirty bit set.
func (e Entry) WithDirty() Entry {
	return e | Entry(dirtyBit)
}

// WithoutDirty returns the entry with the dirty bit cleared.
func (e Entry) WithoutDirty() Entry {
	return e &^ Entry(dirtyBit)
}

// Invalidated returns the entry with both the valid and the dirty bit
// cleared. The dirty bit goes with the valid bit so that a dirty entry can
// never be invalid.
func (e Entry) Invalidated() Entry {
	return e &^ Entry(validBit|dirtyBit)
}
