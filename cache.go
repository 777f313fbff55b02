// Package cachesim is a functional cache simulator. It models hit/miss
// classification, pseudo-random replacement, dirty-line tracking, and
// write-back propagation through a multi-level hierarchy, without modeling
// timing.
package cachesim

import (
	"log"

	"github.com/sarchlab/cachesim/hooking"
	"github.com/sarchlab/cachesim/internal/tagging"
)

// A MissHandler receives the misses and writebacks of an upper-level cache.
// Another *Cache is the usual implementation, forming an L1-to-L2-to-memory
// chain. Handler links are non-owning and must not form a cycle; a cycle
// recurses without bound.
type MissHandler interface {
	Access(addr, bytes uint64, store bool)
	CleanInvalidate(addr, bytes uint64, clean, inval bool)
}

// HookPosMiss is triggered once per miss, after the miss is counted and
// before the victim is selected. The hook item is a MissInfo.
var HookPosMiss = &hooking.HookPos{Name: "Miss"}

// MissInfo describes one cache miss.
type MissInfo struct {
	Addr  uint64
	Bytes uint64
	Store bool
}

// A Cache simulates one level of a cache hierarchy. It is driven one access
// at a time and performs no locking; a cache shared as the miss handler of
// concurrently driven caches needs external mutual exclusion.
type Cache struct {
	hooking.HookableBase

	name        string
	cfg         Config
	store       tagging.Store
	missHandler MissHandler
	stats       Stats

	log    bool
	logger *log.Logger
}

// Name returns the name the cache reports under.
func (c *Cache) Name() string {
	return c.name
}

// Config returns the cache's geometry.
func (c *Cache) Config() Config {
	return c.cfg
}

// SetMissHandler links the next level of the hierarchy. The handler must
// outlive this cache.
func (c *Cache) SetMissHandler(mh MissHandler) {
	c.missHandler = mh
}

// SetLog enables or disables the per-miss diagnostic log.
func (c *Cache) SetLog(enable bool) {
	c.log = enable
}

// Access simulates one read or write of `bytes` bytes at addr. On a miss it
// victimizes a line, writes a valid-and-dirty victim back to the miss
// handler, and then fills the new line from the miss handler. The writeback
// always precedes the fill.
func (c *Cache) Access(addr, bytes uint64, store bool) {
	if store {
		c.stats.WriteAccesses++
		c.stats.BytesWritten += bytes
	} else {
		c.stats.ReadAccesses++
		c.stats.BytesRead += bytes
	}

	lineAddr := addr >> c.cfg.IndexShift

	if h, ok := c.store.Lookup(lineAddr); ok {
		if store {
			c.store.Put(h, c.store.At(h).WithDirty())
		}

		return
	}

	if store {
		c.stats.WriteMisses++
	} else {
		c.stats.ReadMisses++
	}

	c.reportMiss(addr, bytes, store)

	victim := c.store.Victimize(lineAddr)
	if victim.Valid() && victim.Dirty() {
		if c.missHandler != nil {
			dirtyAddr := victim.LineAddress() << c.cfg.IndexShift
			c.missHandler.Access(dirtyAddr, c.cfg.LineSize, true)
		}

		c.stats.Writebacks++
	}

	if c.missHandler != nil {
		c.missHandler.Access(addr&^(c.cfg.LineSize-1), c.cfg.LineSize, false)
	}

	if store {
		// Look the line up again rather than holding a handle across the
		// recursive miss-handler calls.
		h, ok := c.store.Lookup(lineAddr)
		if ok {
			c.store.Put(h, c.store.At(h).WithDirty())
		}
	}
}

// CleanInvalidate walks every line the [addr, addr+bytes) range touches.
// Clean counts a writeback for each dirty line and clears its dirty bit; no
// data moves, only metadata. Inval clears the valid bit. The request is
// always forwarded to the miss handler, whether or not any line matched.
func (c *Cache) CleanInvalidate(addr, bytes uint64, clean, inval bool) {
	lineMask := c.cfg.LineSize - 1
	start := addr &^ lineMask
	end := (addr + bytes + lineMask) &^ lineMask

	for cur := start; cur < end; cur += c.cfg.LineSize {
		h, ok := c.store.Lookup(cur >> c.cfg.IndexShift)
		if !ok {
			continue
		}

		e := c.store.At(h)

		if clean && e.Dirty() {
			c.stats.Writebacks++
			e = e.WithoutDirty()
		}

		if inval {
			e = e.Invalidated()
		}

		c.store.Put(h, e)
	}

	if c.missHandler != nil {
		c.missHandler.CleanInvalidate(addr, bytes, clean, inval)
	}
}

func (c *Cache) reportMiss(addr, bytes uint64, store bool) {
	if c.log {
		direction := "read"
		if store {
			direction = "write"
		}

		c.logger.Printf("%s %s miss 0x%x", c.name, direction, addr)
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosMiss,
		Item:   MissInfo{Addr: addr, Bytes: bytes, Store: store},
	})
}
