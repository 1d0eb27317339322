// Package schedule implements the top-rated table and favored culling
// (component C), the frontier tracker (component D), the frontier
// set-cover scheduler (component E), and the weight/score model
// (component F).
package schedule

import (
	"log/slog"
	"math/bits"

	"github.com/fluxqueue/fluxqueue/internal/bitmap"
	"github.com/fluxqueue/fluxqueue/internal/queue"
	"github.com/fluxqueue/fluxqueue/pkg/types"
)

// TopRated tracks, for every edge ever seen with a trace bit set, the
// seed currently judged cheapest to fuzz among those covering it.
// Unvisited edges have no entry.
type TopRated struct {
	winners []*queue.Seed // indexed by edge id; nil = no entry
	store   *queue.Store
	counters *FuzzCounters

	FixedSeed bool
	Schedule  types.ScheduleType

	log *slog.Logger
}

// NewTopRated allocates a table sized to mapSize edges.
func NewTopRated(mapSize int, store *queue.Store, counters *FuzzCounters, logger *slog.Logger) *TopRated {
	if logger == nil {
		logger = slog.Default()
	}
	return &TopRated{
		winners:  make([]*queue.Seed, mapSize),
		store:    store,
		counters: counters,
		log:      logger,
	}
}

// Winner returns the current top-rated seed for edge, or nil.
func (t *TopRated) Winner(edge int) *queue.Seed {
	if edge < 0 || edge >= len(t.winners) {
		return nil
	}
	return t.winners[edge]
}

func nextPowerOfTwo(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return 1 << uint(32-bits.LeadingZeros32(v-1))
}

func (t *TopRated) speedSensitive() bool {
	return !(t.FixedSeed || t.Schedule == types.ScheduleRare)
}

func (t *TopRated) fuzzPressure(sd *queue.Seed) int64 {
	switch {
	case t.Schedule == types.ScheduleFast:
		return 0
	case t.Schedule == types.ScheduleRare:
		return int64(nextPowerOfTwo(t.counters.Get(sd.NFuzzEntry)))
	default:
		return int64(sd.FuzzLevel)
	}
}

// UpdateBitmapScore evaluates candidate against every edge its trace bits
// set, possibly installing it as the new top-rated winner. traceBits is
// the raw per-execution hit-count array (one byte per edge) observed when
// candidate was discovered. Sets t.store.ScoreChanged on any win.
func (t *TopRated) UpdateBitmapScore(candidate *queue.Seed, traceBits []byte) {
	speedSensitive := t.speedSensitive()
	candidateFactor := candidate.FavFactor(speedSensitive)
	candidatePressure := t.fuzzPressure(candidate)

	for edge, hit := range traceBits {
		if hit == 0 {
			continue
		}
		prev := t.winners[edge]
		wins := prev == nil
		if prev != nil {
			prevPressure := t.fuzzPressure(prev)
			prevFactor := prev.FavFactor(speedSensitive)
			switch {
			case candidatePressure < prevPressure:
				wins = true
			case candidatePressure == prevPressure && candidateFactor < prevFactor:
				wins = true
			}
		}
		if !wins {
			continue
		}
		if prev != nil {
			prev.TCRef--
			if prev.TCRef == 0 {
				prev.TraceMin = nil
			}
		}
		t.winners[edge] = candidate
		candidate.TCRef++
		if candidate.TraceMin == nil {
			candidate.TraceMin = bitmap.FromTraceBits(traceBits)
		}
		t.store.ScoreChanged = true
	}
}

// CullQueue recomputes the favored set. It is idempotent and a no-op
// when ScoreChanged is false. On return it clears ScoreChanged and sets
// ReinitTable.
func (t *TopRated) CullQueue() error {
	if !t.store.ScoreChanged {
		return nil
	}

	uncovered := bitmap.New(len(t.winners))
	for i := range t.winners {
		uncovered.Set(i)
	}

	t.store.QueuedFavored = 0
	t.store.PendingFavored = 0
	t.store.SmallestFavored = -1

	t.store.Each(func(sd *queue.Seed) { sd.Favored = false })

	for edge := 0; edge < len(t.winners); edge++ {
		if !uncovered.Test(edge) {
			continue
		}
		winner := t.winners[edge]
		if winner == nil {
			continue
		}
		winner.Favored = true
		if winner.TraceMin != nil {
			uncovered.AndNot(winner.TraceMin)
		} else {
			uncovered.Clear(edge)
		}
		t.store.QueuedFavored++
		if !winner.WasFuzzed {
			t.store.PendingFavored++
			if t.store.SmallestFavored == -1 || winner.ID < t.store.SmallestFavored {
				t.store.SmallestFavored = winner.ID
			}
		}
	}

	var firstErr error
	t.store.Each(func(sd *queue.Seed) {
		if sd.Disabled {
			return
		}
		redundant := !sd.Favored
		if err := t.store.MarkRedundant(sd, redundant); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	if firstErr != nil {
		return firstErr
	}

	t.store.ScoreChanged = false
	t.store.ReinitTable = true
	return nil
}
