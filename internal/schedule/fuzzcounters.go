package schedule

import (
	"hash/maphash"

	"github.com/fluxqueue/fluxqueue/internal/queue"
)

// FuzzCounters is the n_fuzz back-index array: a fixed-size table of hit
// counters indexed by a hash of a seed's edge set (see Entry), read by
// the RARE and FAST power schedules and incremented at a seed's entry
// every time that seed is picked for fuzzing.
type FuzzCounters struct {
	counts []uint32
	seed   maphash.Seed
}

// NewFuzzCounters allocates a table of the given size.
func NewFuzzCounters(size int) *FuzzCounters {
	return &FuzzCounters{counts: make([]uint32, size), seed: maphash.MakeSeed()}
}

// Entry computes a seed's back-index into the counters table from its
// discovery-time edge footprint, mirroring the source's n_fuzz_entry
// assignment: a hash of the trace-mini bitmap folded into table range.
func (c *FuzzCounters) Entry(sd *queue.Seed) uint32 {
	if len(c.counts) == 0 {
		return 0
	}
	var h maphash.Hash
	h.SetSeed(c.seed)
	if sd.TraceMin != nil {
		sd.TraceMin.Each(func(id int) {
			var b [4]byte
			b[0] = byte(id)
			b[1] = byte(id >> 8)
			b[2] = byte(id >> 16)
			b[3] = byte(id >> 24)
			_, _ = h.Write(b[:])
		})
	}
	return uint32(h.Sum64() % uint64(len(c.counts)))
}

// Get returns the current counter value at entry.
func (c *FuzzCounters) Get(entry uint32) uint32 {
	if int(entry) >= len(c.counts) {
		return 0
	}
	return c.counts[entry]
}

// Increment bumps the counter at entry by one.
func (c *FuzzCounters) Increment(entry uint32) {
	if int(entry) < len(c.counts) {
		c.counts[entry]++
	}
}
