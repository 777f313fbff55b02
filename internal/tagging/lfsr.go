package tagging

const lfsrPolynomial uint32 = 0xd0000001

// An LFSR is a 32-bit linear-feedback shift register used to pick eviction
// victims. It always starts from the same seed, so the same access sequence
// produces the same replacement decisions across runs.
type LFSR struct {
	reg uint32
}

// NewLFSR returns a register seeded with 1.
func NewLFSR() *LFSR {
	return &LFSR{reg: 1}
}

// Next advances the register and returns its new value.
func (l *LFSR) Next() uint32 {
	l.reg = (l.reg >> 1) ^ (-(l.reg & 1) & lfsrPolynomial)
	return l.reg
}
