package schedule

import (
	"log/slog"

	"github.com/fluxqueue/fluxqueue/internal/bitmap"
	"github.com/fluxqueue/fluxqueue/internal/cfg"
	"github.com/fluxqueue/fluxqueue/internal/queue"
)

// FrontierCap bounds how many frontier edges a single seed record may
// list; excess is dropped with a warning rather than growing unbounded.
const FrontierCap = 256

// RecentFrontierLimit bounds the FIFO of most-recently-discovered
// frontier edges used by the priority tie-break policy.
const RecentFrontierLimit = 64

// FrontierTracker maintains per-seed and global frontier-edge bitmaps and
// the bounded FIFO of recently-discovered frontier edges.
type FrontierTracker struct {
	graph  *cfg.Graph
	global *bitmap.Map
	initial *bitmap.Map

	recent    [RecentFrontierLimit]int
	recentLen int
	recentPos int

	log *slog.Logger
}

// NewFrontierTracker allocates frontier bitmaps sized to mapSize.
func NewFrontierTracker(graph *cfg.Graph, mapSize int, logger *slog.Logger) *FrontierTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontierTracker{
		graph:   graph,
		global:  bitmap.New(mapSize),
		initial: bitmap.New(mapSize),
		log:     logger,
	}
}

// Global returns the current global frontier bitmap.
func (f *FrontierTracker) Global() *bitmap.Map { return f.global }

// RecordSeed walks the edges candidate's trace bits hit, classifying each
// as an inner frontier edge (virgin && !trace). Matching edges are
// appended to candidate's per-seed frontier list (capped at FrontierCap)
// and set in the global frontier bitmap.
func (f *FrontierTracker) RecordSeed(candidate *queue.Seed, traceBits, virginBits []byte) {
	for edge, hit := range traceBits {
		if hit == 0 {
			continue
		}
		if !f.graph.IsFrontierInner(edge, virginBits, traceBits) {
			continue
		}
		if len(candidate.FrontierNodes) >= FrontierCap {
			f.log.Warn("frontier cap exceeded, truncating", "seed", candidate.Filename, "cap", FrontierCap)
			break
		}
		candidate.FrontierNodes = append(candidate.FrontierNodes, edge)
		if !f.global.Test(edge) {
			f.global.Set(edge)
			f.pushRecent(edge)
		}
	}
}

func (f *FrontierTracker) pushRecent(edge int) {
	f.recent[f.recentPos] = edge
	f.recentPos = (f.recentPos + 1) % RecentFrontierLimit
	if f.recentLen < RecentFrontierLimit {
		f.recentLen++
	}
}

// RecentEdges returns the FIFO contents, most-recent last.
func (f *FrontierTracker) RecentEdges() []int {
	out := make([]int, f.recentLen)
	start := (f.recentPos - f.recentLen + RecentFrontierLimit) % RecentFrontierLimit
	for i := 0; i < f.recentLen; i++ {
		out[i] = f.recent[(start+i)%RecentFrontierLimit]
	}
	return out
}

// RecentAges returns edge -> age, where age 0 is the most-recently
// discovered frontier edge and age increases going backward in time.
// Used by the priority tie-break policy's recency weighting.
func (f *FrontierTracker) RecentAges() map[int]int {
	edges := f.RecentEdges() // oldest .. newest
	ages := make(map[int]int, len(edges))
	for i, e := range edges {
		ages[e] = len(edges) - 1 - i
	}
	return ages
}

// MostRecentEdge returns the single most-recently discovered frontier
// edge and true, or (0, false) if the FIFO is empty.
func (f *FrontierTracker) MostRecentEdge() (int, bool) {
	if f.recentLen == 0 {
		return 0, false
	}
	idx := (f.recentPos - 1 + RecentFrontierLimit) % RecentFrontierLimit
	return f.recent[idx], true
}

// ChangeSet holds the result of comparing global against the previous
// snapshot: edges newly classified as frontier, and edges that no longer
// are.
type ChangeSet struct {
	New     []int
	Removed []int
}

// DetectChanges compares global_frontier against initial_frontier
// byte-by-byte, then overwrites initial_frontier with the current state.
func (f *FrontierTracker) DetectChanges() ChangeSet {
	var cs ChangeSet
	newBits := f.initial.NewBits(f.global) // bits in global not in initial
	removedBits := f.global.NewBits(f.initial) // bits in initial not in global
	cs.New = newBits
	cs.Removed = removedBits
	f.initial = f.global.Clone()
	return cs
}
