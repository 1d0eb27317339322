package schedule

import (
	"log/slog"
	"math/rand"

	"github.com/fluxqueue/fluxqueue/internal/queue"
)

// CoverResult is the outcome of one greedy set-cover round.
type CoverResult struct {
	Cover      []*queue.Seed // the chosen minimal covering subset
	Partial    bool          // true if remaining frontier bits were left uncovered
	RandomPick bool          // true if no candidate had frontier coverage and a random seed was picked instead
}

// SetCoverScheduler produces, once per rebuild, a minimal collection of
// active seeds that together cover every currently-set global frontier
// edge (component E).
//
// Only the source's _final set-cover variant is implemented; _v1 through
// _v4 are earlier iterations superseded by _final and are not ported.
type SetCoverScheduler struct {
	store    *queue.Store
	frontier *FrontierTracker
	rng      *rand.Rand
	log      *slog.Logger
}

// NewSetCoverScheduler constructs a scheduler over store's active seeds.
func NewSetCoverScheduler(store *queue.Store, frontier *FrontierTracker, rng *rand.Rand, logger *slog.Logger) *SetCoverScheduler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SetCoverScheduler{store: store, frontier: frontier, rng: rng, log: logger}
}

// Run performs one greedy cover round against the current global
// frontier bitmap.
func (s *SetCoverScheduler) Run() CoverResult {
	var candidates []*queue.Seed
	s.store.Each(func(sd *queue.Seed) {
		if !sd.Disabled && len(sd.FrontierNodes) > 0 {
			candidates = append(candidates, sd)
		}
	})

	if len(candidates) == 0 {
		var active []*queue.Seed
		s.store.Each(func(sd *queue.Seed) {
			if !sd.Disabled {
				active = append(active, sd)
			}
		})
		if len(active) == 0 {
			return CoverResult{}
		}
		pick := active[s.rng.Intn(len(active))]
		return CoverResult{Cover: []*queue.Seed{pick}, RandomPick: true}
	}

	remaining := s.frontier.Global().Clone()
	var cover []*queue.Seed

	for remaining.Popcount() > 0 && len(candidates) > 0 {
		bestIdx := -1
		bestGain := -1
		for i, c := range candidates {
			gain := 0
			for _, e := range c.FrontierNodes {
				if remaining.Test(e) {
					gain++
				}
			}
			if gain > bestGain || (gain == bestGain && bestIdx >= 0 && c.ID < candidates[bestIdx].ID) {
				bestGain = gain
				bestIdx = i
			}
		}
		if bestGain <= 0 {
			break
		}
		winner := candidates[bestIdx]
		for _, e := range winner.FrontierNodes {
			remaining.Clear(e)
		}
		cover = append(cover, winner)
		winner.SetCovered = true

		candidates[bestIdx] = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]
	}

	partial := remaining.Popcount() > 0
	if partial {
		s.log.Warn("set cover incomplete", "uncovered_edges", remaining.Popcount())
	}
	return CoverResult{Cover: cover, Partial: partial}
}

// SelectTieBreak applies one of the four tie-break policies to a cover
// list and returns the chosen seed (set_favored_id); the choice is not
// stored here. Engine.NextSeed calls it but draws the next seed from the
// alias table alone, so the returned seed does not reach the sampler.
func (s *SetCoverScheduler) SelectTieBreak(cover []*queue.Seed, policy TieBreakPolicy) *queue.Seed {
	if len(cover) == 0 {
		return nil
	}
	switch policy {
	case TieBreakPriorityPolicy:
		return s.tieBreakPriority(cover)
	case TieBreakLatestPolicy:
		return s.tieBreakLatest(cover)
	case TieBreakFastestPolicy:
		return s.tieBreakFastest(cover)
	case TieBreakCoveringLatestFrontierPolicy:
		return s.tieBreakCoveringLatestFrontier(cover)
	default:
		return cover[0]
	}
}

// TieBreakPolicy names one of the four configurable cover-list selectors.
type TieBreakPolicy int

const (
	TieBreakPriorityPolicy TieBreakPolicy = iota
	TieBreakLatestPolicy
	TieBreakFastestPolicy
	TieBreakCoveringLatestFrontierPolicy
)

func (s *SetCoverScheduler) tieBreakPriority(cover []*queue.Seed) *queue.Seed {
	ages := s.frontier.RecentAges()
	var candidates []*queue.Seed
	for _, sd := range cover {
		if !sd.SetFavored {
			candidates = append(candidates, sd)
		}
	}
	if len(candidates) == 0 {
		for _, sd := range cover {
			sd.SetFavored = false
		}
		return cover[s.rng.Intn(len(cover))]
	}

	var best *queue.Seed
	bestScore := -1.0
	for _, sd := range candidates {
		recencyScore := 0.0
		for _, e := range sd.FrontierNodes {
			if age, ok := ages[e]; ok {
				recencyScore += 1.0 / float64(1+age)
			}
		}
		score := recencyScore / float64(sd.ExecUs+1)
		if score > bestScore {
			bestScore = score
			best = sd
		}
	}
	best.SetFavored = true
	return best
}

func (s *SetCoverScheduler) tieBreakLatest(cover []*queue.Seed) *queue.Seed {
	var best *queue.Seed
	for _, sd := range cover {
		if sd.SetFavored {
			continue
		}
		if best == nil || sd.ID > best.ID {
			best = sd
		}
	}
	if best == nil {
		return cover[0]
	}
	return best
}

func (s *SetCoverScheduler) tieBreakFastest(cover []*queue.Seed) *queue.Seed {
	var best *queue.Seed
	for _, sd := range cover {
		if sd.SetFavored {
			continue
		}
		if best == nil || sd.ExecUs < best.ExecUs {
			best = sd
		}
	}
	if best == nil {
		return cover[0]
	}
	return best
}

func (s *SetCoverScheduler) tieBreakCoveringLatestFrontier(cover []*queue.Seed) *queue.Seed {
	latest, ok := s.frontier.MostRecentEdge()
	if !ok {
		return cover[0]
	}
	var matching []*queue.Seed
	for _, sd := range cover {
		for _, e := range sd.FrontierNodes {
			if e == latest {
				matching = append(matching, sd)
				break
			}
		}
	}
	if len(matching) == 0 {
		matching = cover
	}
	var best *queue.Seed
	bestScore := -1.0
	for _, sd := range matching {
		score := 100.0 / float64(sd.ExecUs+1)
		if score > bestScore {
			bestScore = score
			best = sd
		}
	}
	return best
}
