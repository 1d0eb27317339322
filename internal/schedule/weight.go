package schedule

import (
	"math"

	"github.com/fluxqueue/fluxqueue/internal/queue"
	"github.com/fluxqueue/fluxqueue/pkg/types"
)

// CorpusAverages are the running corpus-wide averages the weight and
// score models compare each seed against.
type CorpusAverages struct {
	AvgExecUs    float64
	AvgLogBitmap float64
	AvgTCRef     float64
	AvgNFuzzLog  float64 // mean of log2(n_fuzz+1) over active seeds, used by COE
	TotalExecs   int64
}

// WeightModel concentrates the per-seed weight computation behind one
// call site, keyed off the active power schedule.
type WeightModel struct {
	Schedule types.ScheduleType
	Counters *FuzzCounters
}

// Weight computes a seed's sampling weight (used under speed-sensitive
// schedules ahead of alias-table construction).
func (w WeightModel) Weight(sd *queue.Seed, avg CorpusAverages, mostRecentFive map[int]bool) float64 {
	weight := 1.0

	if w.Schedule != types.ScheduleRare && sd.ExecUs > 0 {
		weight *= avg.AvgExecUs / float64(sd.ExecUs)
	}

	if sd.TraceMin != nil && avg.AvgLogBitmap > 0 {
		bits := float64(sd.TraceMin.Popcount())
		if bits < 1 {
			bits = 1
		}
		weight *= math.Log(bits) / avg.AvgLogBitmap
	}

	if avg.AvgTCRef > 0 {
		weight *= 1 + float64(sd.TCRef)/avg.AvgTCRef
	}

	switch w.Schedule {
	case types.ScheduleCOE, types.ScheduleFast, types.ScheduleLin, types.ScheduleQuad, types.ScheduleRare:
		hits := w.Counters.Get(sd.NFuzzEntry)
		weight /= math.Log10(float64(hits)+1) + 1
	}

	if weight < 0.1 {
		weight = 0.1
	}

	if sd.Favored {
		weight *= 5
	}
	if !sd.WasFuzzed {
		weight *= 2
	}
	if sd.FSRedundant {
		weight *= 0.8
	}
	if w.Schedule == types.ScheduleMMOpt && mostRecentFive[sd.ID] {
		weight *= 2
	}

	return weight
}
