package tagging

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("LFSR", func() {
	ginkgo.It("should produce the fixed replacement sequence", func() {
		l := NewLFSR()

		Expect(l.Next()).To(Equal(uint32(0xd0000001)))
		Expect(l.Next()).To(Equal(uint32(0xb8000001)))
		Expect(l.Next()).To(Equal(uint32(0x8c000001)))
	})

	ginkgo.It("should produce the same sequence in every instance", func() {
		a := NewLFSR()
		b := NewLFSR()

		for i := 0; i < 10000; i++ {
			Expect(a.Next()).To(Equal(b.Next()))
		}
	})

	ginkgo.It("should not get stuck", func() {
		l := NewLFSR()
		seen := make(map[uint32]bool)

		for i := 0; i < 1000; i++ {
			seen[l.Next()] = true
		}

		Expect(len(seen)).To(Equal(1000))
	})
})
