package schedule

import (
	"math"

	"github.com/fluxqueue/fluxqueue/internal/queue"
	"github.com/fluxqueue/fluxqueue/pkg/types"
)

// MaxFactor pins the EXPLOIT schedule's performance score to its ceiling.
const MaxFactor = 32

// ScoreModel concentrates the per-seed performance-score computation
// (the power schedule) behind one call site.
type ScoreModel struct {
	Schedule     types.ScheduleType
	HavocMaxMult int
	Counters     *FuzzCounters
}

// Score computes a seed's perf_score: how much mutation energy to spend
// on it this round. mostRecentFive identifies seeds among the last five
// discoveries, used by the MMOPT bonus.
func (sm ScoreModel) Score(sd *queue.Seed, avg CorpusAverages, mostRecentFive map[int]bool) float64 {
	score := 100.0

	if sd.ExecUs > 0 && avg.AvgExecUs > 0 {
		ratio := float64(sd.ExecUs) / avg.AvgExecUs
		switch {
		case ratio > 10:
			score *= 0.1
		case ratio > 4:
			score *= 0.25
		case ratio > 2:
			score *= 0.5
		case ratio > 1.5:
			score *= 0.75
		case ratio*4 < 1:
			score *= 3
		case ratio*3 < 1:
			score *= 2
		case ratio*2 < 1:
			score *= 1.5
		}
	}

	if sd.TraceMin != nil {
		bits := float64(sd.TraceMin.Popcount())
		if avg.AvgLogBitmap > 0 && bits > 0 {
			ratio := bits / avg.AvgLogBitmap
			switch {
			case ratio < 0.3:
				score *= 0.25
			case ratio < 0.5:
				score *= 0.5
			case ratio < 0.75:
				score *= 0.75
			case ratio > 3:
				score *= 3
			case ratio > 2:
				score *= 2
			case ratio > 1.5:
				score *= 1.5
			}
		}
	}

	if sd.Handicap >= 4 {
		score *= 4
		sd.Handicap -= 4
	} else if sd.Handicap > 0 {
		score *= 2
		sd.Handicap--
	}

	switch {
	case sd.Depth <= 3:
		score *= 1
	case sd.Depth <= 7:
		score *= 2
	case sd.Depth <= 13:
		score *= 3
	case sd.Depth <= 25:
		score *= 4
	default:
		score *= 5
	}

	score = sm.applyScheduleFactor(sd, score, avg, mostRecentFive)

	cap := float64(sm.HavocMaxMult) * 100
	if cap <= 0 {
		cap = 800
	}
	if score > cap {
		score = cap
	}
	if score < 1 && sm.Schedule != types.ScheduleCOE {
		score = 1
	}
	return score
}

func (sm ScoreModel) applyScheduleFactor(sd *queue.Seed, score float64, avg CorpusAverages, mostRecentFive map[int]bool) float64 {
	hits := float64(sm.Counters.Get(sd.NFuzzEntry))
	log2hits := math.Log2(hits + 1)

	switch sm.Schedule {
	case types.ScheduleExplore, types.ScheduleSeek:
		// no schedule-specific adjustment

	case types.ScheduleExploit:
		score = MaxFactor * 100

	case types.ScheduleCOE:
		if log2hits > avg.AvgNFuzzLog && !sd.Favored {
			score = 0
		}

	case types.ScheduleFast:
		factor := 1.0
		switch int(log2hits) {
		case 0, 1:
			factor = 4
		case 2, 3:
			factor = 3
		case 4:
			factor = 2
		case 5:
			factor = 1
		case 6:
			factor = 0.8
		case 7:
			factor = 0.6
		default:
			factor = 0.4
		}
		if sd.Favored {
			factor *= 1.15
		}
		score *= factor

	case types.ScheduleLin:
		score *= float64(sd.FuzzLevel) / (hits + 1)

	case types.ScheduleQuad:
		ratio := float64(sd.FuzzLevel) / (hits + 1)
		score *= ratio * ratio

	case types.ScheduleMMOpt:
		if mostRecentFive[sd.ID] {
			score *= 2
		}

	case types.ScheduleRare:
		score += 10 * float64(sd.TCRef)
		if avg.TotalExecs > 0 {
			score *= 1 - hits/float64(avg.TotalExecs)
		}
	}

	return score
}
