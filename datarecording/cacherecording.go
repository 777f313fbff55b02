package datarecording

import (
	"github.com/sarchlab/cachesim"
	"github.com/sarchlab/cachesim/hooking"
)

// A MissEntry is one recorded cache miss.
type MissEntry struct {
	Cache string
	Addr  uint64
	Bytes uint64
	Store bool
}

// A StatsEntry is one cache's final counter snapshot.
type StatsEntry struct {
	Cache         string
	BytesRead     uint64
	BytesWritten  uint64
	ReadAccesses  uint64
	WriteAccesses uint64
	ReadMisses    uint64
	WriteMisses   uint64
	Writebacks    uint64
	MissRate      float64
}

// A MissRecorder is a hook that persists one row per cache miss.
type MissRecorder struct {
	recorder  DataRecorder
	tableName string
}

// NewMissRecorder creates the miss table and returns a hook that fills it.
// Attach it to each cache whose misses should be recorded.
func NewMissRecorder(recorder DataRecorder, tableName string) *MissRecorder {
	recorder.CreateTable(tableName, MissEntry{})

	return &MissRecorder{
		recorder:  recorder,
		tableName: tableName,
	}
}

// Func records the miss carried by the hook context.
func (r *MissRecorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cachesim.HookPosMiss {
		return
	}

	cache, ok := ctx.Domain.(*cachesim.Cache)
	if !ok {
		return
	}

	info := ctx.Item.(cachesim.MissInfo)

	r.recorder.InsertData(r.tableName, MissEntry{
		Cache: cache.Name(),
		Addr:  info.Addr,
		Bytes: info.Bytes,
		Store: info.Store,
	})
}

// RecordStats writes one statistics row per cache, creating the table on
// first use.
func RecordStats(
	recorder DataRecorder,
	tableName string,
	caches ...*cachesim.Cache,
) {
	if !tableExists(recorder, tableName) {
		recorder.CreateTable(tableName, StatsEntry{})
	}

	for _, c := range caches {
		s := c.Stats()

		recorder.InsertData(tableName, StatsEntry{
			Cache:         c.Name(),
			BytesRead:     s.BytesRead,
			BytesWritten:  s.BytesWritten,
			ReadAccesses:  s.ReadAccesses,
			WriteAccesses: s.WriteAccesses,
			ReadMisses:    s.ReadMisses,
			WriteMisses:   s.WriteMisses,
			Writebacks:    s.Writebacks,
			MissRate:      s.MissRate(),
		})
	}
}

func tableExists(recorder DataRecorder, tableName string) bool {
	for _, name := range recorder.ListTables() {
		if name == tableName {
			return true
		}
	}

	return false
}
