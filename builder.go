package cachesim

import (
	"io"
	"log"
	"math/bits"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/internal/tagging"
)

// fullyAssocWayThreshold is the way count above which a single-set cache is
// backed by the associative map instead of the dense array. Empirical.
const fullyAssocWayThreshold = 4

// Builder can build caches.
type Builder struct {
	cfg          Config
	missHandler  MissHandler
	statsWriter  io.Writer
	logWriter    io.Writer
	reportOnExit bool
}

// MakeBuilder creates a new builder with a 64-set, 4-way, 64-byte-line
// default geometry.
func MakeBuilder() Builder {
	return Builder{
		cfg:         MustParseConfig("64:4:64"),
		statsWriter: os.Stdout,
		logWriter:   os.Stderr,
	}
}

// WithConfig sets the geometry of the cache to build.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithMissHandler links the built cache to the next level of the hierarchy.
func (b Builder) WithMissHandler(mh MissHandler) Builder {
	b.missHandler = mh
	return b
}

// WithStatsWriter sets the stream the exit-time statistics report goes to.
func (b Builder) WithStatsWriter(w io.Writer) Builder {
	b.statsWriter = w
	return b
}

// WithLogWriter sets the diagnostic stream for the per-miss log.
func (b Builder) WithLogWriter(w io.Writer) Builder {
	b.logWriter = w
	return b
}

// WithReportOnExit makes the built cache write its statistics report when
// the process exits through atexit.
func (b Builder) WithReportOnExit(enable bool) Builder {
	b.reportOnExit = enable
	return b
}

// Build builds a cache. High-way single-set geometries get the
// fully-associative tag store; everything else gets the set-associative
// one. The configuration must be valid; Build panics otherwise.
func (b Builder) Build(name string) *Cache {
	if err := b.cfg.validate(); err != nil {
		panic(err)
	}

	b.cfg.IndexShift = uint(bits.TrailingZeros64(b.cfg.LineSize))

	c := &Cache{
		name:        name,
		cfg:         b.cfg,
		missHandler: b.missHandler,
		logger:      log.New(b.logWriter, "", 0),
	}

	lfsr := tagging.NewLFSR()
	if b.cfg.Ways > fullyAssocWayThreshold && b.cfg.Sets == 1 {
		c.store = tagging.NewFullyAssocStore(b.cfg.Ways, lfsr)
	} else {
		c.store = tagging.NewSetAssocStore(b.cfg.Sets, b.cfg.Ways, lfsr)
	}

	if b.reportOnExit {
		atexit.Register(func() { c.ReportStats(b.statsWriter) })
	}

	return c
}
