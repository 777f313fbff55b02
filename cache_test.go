package cachesim

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/hooking"
)

type missCollector struct {
	misses []MissInfo
}

func (h *missCollector) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosMiss {
		return
	}

	h.misses = append(h.misses, ctx.Item.(MissInfo))
}

var _ = Describe("Cache", func() {
	var (
		mockCtrl *gomock.Controller
		mh       *MockMissHandler
		c        *Cache
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mh = NewMockMissHandler(mockCtrl)
		c = MakeBuilder().
			WithConfig(MustParseConfig("1:2:16")).
			WithMissHandler(mh).
			Build("L1")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should count every access and every byte", func() {
		mh.EXPECT().
			Access(gomock.Any(), gomock.Any(), gomock.Any()).
			AnyTimes()

		c.Access(0x100, 4, false)
		c.Access(0x100, 4, false)
		c.Access(0x200, 8, true)

		s := c.Stats()
		Expect(s.ReadAccesses).To(Equal(uint64(2)))
		Expect(s.WriteAccesses).To(Equal(uint64(1)))
		Expect(s.BytesRead).To(Equal(uint64(8)))
		Expect(s.BytesWritten).To(Equal(uint64(8)))
	})

	It("should hit on a resident line without touching the next level",
		func() {
			mh.EXPECT().Access(uint64(0x100), uint64(16), false)

			c.Access(0x100, 4, false)
			c.Access(0x104, 4, false)
			c.Access(0x10c, 2, false)

			s := c.Stats()
			Expect(s.ReadAccesses).To(Equal(uint64(3)))
			Expect(s.ReadMisses).To(Equal(uint64(1)))
		})

	It("should fill misses from the next level at line granularity", func() {
		mh.EXPECT().Access(uint64(0x230), uint64(16), false)

		c.Access(0x237, 4, false)
	})

	It("should write the displaced dirty line back before the fill", func() {
		gomock.InOrder(
			mh.EXPECT().Access(uint64(0x100), uint64(16), false),
			mh.EXPECT().Access(uint64(0x200), uint64(16), false),
			mh.EXPECT().Access(uint64(0x200), uint64(16), true),
			mh.EXPECT().Access(uint64(0x300), uint64(16), false),
		)

		c.Access(0x100, 4, false) // miss, fills way 1
		c.Access(0x100, 4, false) // hit
		c.Access(0x200, 4, true)  // miss, displaces the clean 0x100 line
		c.Access(0x300, 4, false) // miss, displaces the dirty 0x200 line

		s := c.Stats()
		Expect(s.ReadMisses).To(Equal(uint64(2)))
		Expect(s.WriteMisses).To(Equal(uint64(1)))
		Expect(s.Writebacks).To(Equal(uint64(1)))
	})

	It("should not write back clean victims", func() {
		mh.EXPECT().
			Access(gomock.Any(), uint64(16), false).
			Times(3)

		// All loads land in the same way, so each one displaces the
		// previous clean line.
		c.Access(0x100, 4, false)
		c.Access(0x200, 4, false)
		c.Access(0x300, 4, false)

		Expect(c.Stats().Writebacks).To(Equal(uint64(0)))
	})

	It("should never mark a load-filled line dirty", func() {
		mh.EXPECT().Access(gomock.Any(), gomock.Any(), false).Times(2)

		c.Access(0x100, 4, false)
		c.Access(0x200, 4, false) // displaces the 0x100 line

		Expect(c.Stats().Writebacks).To(Equal(uint64(0)))
	})

	It("should mark a line dirty on a store hit", func() {
		gomock.InOrder(
			mh.EXPECT().Access(uint64(0x100), uint64(16), false),
			mh.EXPECT().Access(uint64(0x100), uint64(16), true),
			mh.EXPECT().Access(uint64(0x200), uint64(16), false),
		)

		c.Access(0x100, 4, false) // load fill
		c.Access(0x100, 4, true)  // store hit dirties the line
		c.Access(0x200, 4, false) // displaces it, forcing a writeback

		Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
	})

	It("should miss after a clean and invalidate", func() {
		mh.EXPECT().Access(gomock.Any(), gomock.Any(), gomock.Any()).
			AnyTimes()
		mh.EXPECT().CleanInvalidate(uint64(0x200), uint64(4), true, true)

		c.Access(0x200, 4, true)
		c.CleanInvalidate(0x200, 4, true, true)

		Expect(c.Stats().Writebacks).To(Equal(uint64(1)))

		c.Access(0x200, 4, false)
		Expect(c.Stats().ReadMisses).To(Equal(uint64(1)))
	})

	It("should clean without evicting", func() {
		mh.EXPECT().Access(gomock.Any(), gomock.Any(), gomock.Any()).
			AnyTimes()
		mh.EXPECT().CleanInvalidate(uint64(0x200), uint64(4), true, false)

		c.Access(0x200, 4, true)
		c.CleanInvalidate(0x200, 4, true, false)

		Expect(c.Stats().Writebacks).To(Equal(uint64(1)))

		c.Access(0x200, 4, false)
		Expect(c.Stats().ReadMisses).To(Equal(uint64(0)))

		// The line went clean, so displacing it writes nothing back.
		c.Access(0x300, 4, false)
		c.Access(0x400, 4, false)
		Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
	})

	It("should not count a writeback when cleaning a clean line", func() {
		mh.EXPECT().Access(gomock.Any(), gomock.Any(), gomock.Any()).
			AnyTimes()
		mh.EXPECT().CleanInvalidate(uint64(0x100), uint64(4), true, true)

		c.Access(0x100, 4, false)
		c.CleanInvalidate(0x100, 4, true, true)

		Expect(c.Stats().Writebacks).To(Equal(uint64(0)))
	})

	It("should touch every line in a clean-invalidate range", func() {
		mh.EXPECT().Access(gomock.Any(), gomock.Any(), gomock.Any()).
			AnyTimes()
		mh.EXPECT().CleanInvalidate(uint64(0x104), uint64(17), true, false)

		// Sixteen sets keep the two dirtied lines resident at once.
		wide := MakeBuilder().
			WithConfig(MustParseConfig("16:2:16")).
			WithMissHandler(mh).
			Build("L1")

		wide.Access(0x100, 4, true)
		wide.Access(0x110, 4, true)

		// [0x104, 0x115) straddles both lines.
		wide.CleanInvalidate(0x104, 17, true, false)

		Expect(wide.Stats().Writebacks).To(Equal(uint64(2)))
	})

	It("should forward clean-invalidate even when nothing matches", func() {
		mh.EXPECT().CleanInvalidate(uint64(0x1000), uint64(64), false, true)

		c.CleanInvalidate(0x1000, 64, false, true)
	})

	It("should run without a miss handler", func() {
		standalone := MakeBuilder().
			WithConfig(MustParseConfig("1:1:16")).
			Build("L1")

		standalone.Access(0x100, 4, true)
		standalone.Access(0x200, 4, true) // displaces the dirty 0x100 line

		s := standalone.Stats()
		Expect(s.WriteMisses).To(Equal(uint64(2)))
		Expect(s.Writebacks).To(Equal(uint64(1)))
	})

	It("should invoke the miss hook once per miss", func() {
		mh.EXPECT().Access(gomock.Any(), gomock.Any(), gomock.Any()).
			AnyTimes()

		collector := &missCollector{}
		c.AcceptHook(collector)

		c.Access(0x100, 4, false)
		c.Access(0x100, 4, false) // hit, no hook
		c.Access(0x200, 8, true)

		Expect(collector.misses).To(HaveLen(2))
		Expect(collector.misses[0]).To(Equal(
			MissInfo{Addr: 0x100, Bytes: 4, Store: false}))
		Expect(collector.misses[1]).To(Equal(
			MissInfo{Addr: 0x200, Bytes: 8, Store: true}))
	})

	It("should log misses in the diagnostic format", func() {
		buf := &bytes.Buffer{}
		logged := MakeBuilder().
			WithConfig(MustParseConfig("1:2:16")).
			WithLogWriter(buf).
			Build("D$")
		logged.SetLog(true)

		logged.Access(0x123, 4, true)
		logged.Access(0x120, 4, false) // hit, not logged
		logged.Access(0x480, 4, false)

		Expect(buf.String()).To(Equal(
			"D$ write miss 0x123\nD$ read miss 0x480\n"))
	})
})

var _ = Describe("Hierarchy", func() {
	It("should cascade misses and writebacks through two levels", func() {
		l2 := MakeBuilder().
			WithConfig(MustParseConfig("16:4:16")).
			Build("L2")
		l1 := MakeBuilder().
			WithConfig(MustParseConfig("1:2:16")).
			WithMissHandler(l2).
			Build("L1")

		l1.Access(0x100, 4, false)
		l1.Access(0x200, 4, true)  // displaces the clean 0x100 line
		l1.Access(0x300, 4, false) // displaces the dirty 0x200 line

		// L2 sees three fills plus the 0x200 writeback.
		s2 := l2.Stats()
		Expect(s2.ReadAccesses).To(Equal(uint64(3)))
		Expect(s2.WriteAccesses).To(Equal(uint64(1)))
		Expect(s2.BytesRead).To(Equal(uint64(48)))
		Expect(s2.BytesWritten).To(Equal(uint64(16)))

		// The writeback hits the line L2 filled earlier.
		Expect(s2.WriteMisses).To(Equal(uint64(0)))
	})

	It("should propagate clean-invalidate down the chain", func() {
		l2 := MakeBuilder().
			WithConfig(MustParseConfig("16:4:16")).
			Build("L2")
		l1 := MakeBuilder().
			WithConfig(MustParseConfig("1:2:16")).
			WithMissHandler(l2).
			Build("L1")

		l1.Access(0x100, 4, false)
		l1.CleanInvalidate(0x100, 4, false, true)

		// Both levels dropped the line, so the re-access misses in both.
		l1.Access(0x100, 4, false)
		Expect(l1.Stats().ReadMisses).To(Equal(uint64(2)))
		Expect(l2.Stats().ReadMisses).To(Equal(uint64(2)))
	})
})
