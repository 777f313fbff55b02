package cachesim

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// ConfigUsage describes the accepted cache configuration format. Drivers
// print it when ParseConfig fails.
const ConfigUsage = `cache configurations must be of the form
  sets:ways:linesize
where sets, ways, and linesize are positive integers, with
sets and linesize both powers of two and linesize at least 8`

// A Config describes the geometry of one cache instance. It is fixed for
// the life of the cache.
type Config struct {
	Sets     uint64
	Ways     uint64
	LineSize uint64

	// IndexShift is log2(LineSize), the number of low address bits that
	// fall inside a line.
	IndexShift uint
}

// ParseConfig parses a "sets:ways:linesize" specification. A malformed
// specification cannot produce a meaningful simulation, so callers are
// expected to treat the returned error as fatal.
func ParseConfig(spec string) (Config, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return Config{}, fmt.Errorf("config %q: want sets:ways:linesize", spec)
	}

	fields := [3]uint64{}
	names := [3]string{"sets", "ways", "linesize"}

	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil || v == 0 {
			return Config{}, fmt.Errorf(
				"config %q: %s must be a positive integer", spec, names[i])
		}

		fields[i] = v
	}

	cfg := Config{
		Sets:     fields[0],
		Ways:     fields[1],
		LineSize: fields[2],
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", spec, err)
	}

	cfg.IndexShift = uint(bits.TrailingZeros64(cfg.LineSize))

	return cfg, nil
}

// MustParseConfig is like ParseConfig but panics on error. It is intended
// for configurations known at compile time.
func MustParseConfig(spec string) Config {
	cfg, err := ParseConfig(spec)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c Config) validate() error {
	switch {
	case c.Sets == 0 || !isPowerOfTwo(c.Sets):
		return fmt.Errorf("sets must be a power of two, got %d", c.Sets)
	case c.Ways == 0:
		return fmt.Errorf("ways must be positive")
	case c.LineSize < 8 || !isPowerOfTwo(c.LineSize):
		return fmt.Errorf(
			"linesize must be a power of two no smaller than 8, got %d",
			c.LineSize)
	}

	return nil
}

func isPowerOfTwo(v uint64) bool {
	return v&(v-1) == 0
}
