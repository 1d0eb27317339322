// Package queue implements the append-only seed store (component B) and
// the seed record (§3) the rest of the scheduler operates on.
package queue

import (
	"time"

	"github.com/fluxqueue/fluxqueue/internal/bitmap"
)

// Seed is one queue entry: a retained input plus the stats and flags the
// scheduler needs to weigh, score, and cull it.
type Seed struct {
	ID       int    // dense index; equals this seed's position in the store
	Filename string // on-disk base name, opaque suffix
	Depth    int    // parent's depth + 1

	Len      int           // bytes length
	ExecUs   int64         // microseconds to execute at calibration
	TraceMin *bitmap.Map   // nil once tc_ref reaches zero
	discoveredAt time.Time

	FuzzLevel   int    // times picked for mutation
	NFuzzEntry  uint32 // back-index into the global fuzz-count array
	Handicap    int    // latecomer bonus, decremented over time

	Disabled         bool
	Favored          bool
	VariableBehavior bool
	PassedDet        bool
	FSRedundant      bool
	WasFuzzed        bool
	IsASCII          bool
	SetFavored       bool
	SetCovered       bool

	Mother int // parent seed id, -1 if absent
	TCRef  int // count of edges for which this seed is top-rated

	FrontierNodes []int // edge ids this seed covers that were frontier-classified at discovery
}

// NewSeed constructs a seed record as add_to_queue would: depth derived
// from the parent, handicap derived from the discovery gap between total
// queued items and items discovered so far.
func NewSeed(id int, filename string, mother int, parentDepth int, queuedItems, queuedDiscovered int) *Seed {
	s := &Seed{
		ID:       id,
		Filename: filename,
		Depth:    parentDepth + 1,
		Mother:   mother,
		Handicap: queuedItems - queuedDiscovered,
	}
	if mother < 0 {
		s.Depth = 1
	}
	s.discoveredAt = time.Now()
	return s
}

// DiscoveredAt returns when this seed was appended to the queue.
func (s *Seed) DiscoveredAt() time.Time { return s.discoveredAt }

// FavFactor is the favor factor used by top-rated comparisons: exec_us *
// len under speed-sensitive schedules, or len<<2 when size alone matters.
func (s *Seed) FavFactor(speedSensitive bool) int64 {
	if speedSensitive {
		return s.ExecUs * int64(s.Len)
	}
	return int64(s.Len) << 2
}
