// Package tagging tracks which lines a cache currently holds and whether
// each of them is dirty.
package tagging

// A Handle identifies one tag-store slot. For a set-associative store it is
// the flat slot index; for a fully-associative store it is the line-address
// key. A handle stays usable until the slot it names is victimized.
type Handle uint64

// A Store keeps the tags of the lines a cache holds. Lookups return a
// handle instead of a reference so that a caller never holds a pointer into
// storage that a later call may reuse.
type Store interface {
	// Lookup finds the slot holding lineAddr. It has no side effect when
	// the line is absent.
	Lookup(lineAddr uint64) (Handle, bool)

	// At returns the entry in the given slot.
	At(h Handle) Entry

	// Put overwrites the given slot. Writing an entry whose valid bit is
	// clear releases the slot.
	Put(h Handle, e Entry)

	// Victimize installs a fresh valid, clean entry for lineAddr and
	// returns the ousted entry. The ousted entry's valid bit tells whether
	// a line was actually evicted; an empty slot ousts the zero entry.
	Victimize(lineAddr uint64) Entry
}
