// Package engine wires the scheduler's components together: the queue
// store is the substrate; every new discovery updates top-rated and
// frontier state; requesting the next seed lazily rebuilds the alias
// table whenever scores changed; minimization runs out-of-band on a
// timer.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/fluxqueue/fluxqueue/internal/alias"
	"github.com/fluxqueue/fluxqueue/internal/bitmap"
	"github.com/fluxqueue/fluxqueue/internal/cache"
	"github.com/fluxqueue/fluxqueue/internal/cfg"
	"github.com/fluxqueue/fluxqueue/internal/config"
	"github.com/fluxqueue/fluxqueue/internal/minimize"
	"github.com/fluxqueue/fluxqueue/internal/queue"
	"github.com/fluxqueue/fluxqueue/internal/schedule"
	"github.com/fluxqueue/fluxqueue/pkg/types"
)

// Snapshot is a point-in-time view of scheduler state, consumed by the
// report generator, the TUI, and the web dashboard.
type Snapshot struct {
	QueueSize       int
	ActiveSeeds     int
	FavoredSeeds    int
	PendingFavored  int
	FrontierEdges   int
	CacheEntries    int
	CacheMaxEntries int
	LastMinimizeAt  time.Time
	AliasTableSize  int
}

// Engine owns the live scheduler pipeline (components B through I) for
// one fuzzing campaign.
type Engine struct {
	cfg   *config.Config
	store *queue.Store
	graph *cfg.Graph
	log   *slog.Logger

	top      *schedule.TopRated
	frontier *schedule.FrontierTracker // nil when UseFrontierScheduler is false
	setcover *schedule.SetCoverScheduler
	counters *schedule.FuzzCounters
	weight   schedule.WeightModel
	score    schedule.ScoreModel

	cache      *cache.Cache
	table      *alias.Table
	aliasSeeds []*queue.Seed // table index i draws aliasSeeds[i]
	rng        *rand.Rand

	minimizer *minimize.Driver

	tieBreak types.TieBreak
}

// diskLoader satisfies cache.Loader by reading a seed's bytes from the
// queue directory.
type diskLoader struct {
	store *queue.Store
	dir   string
}

func (l diskLoader) Load(id int) ([]byte, error) {
	sd := l.store.Get(id)
	return os.ReadFile(filepath.Join(l.dir, sd.Filename))
}

// diskReader adapts the store's directory layout to minimize.FileReader.
type diskReader struct{ dir string }

func (r diskReader) ReadSeedFile(sd *queue.Seed) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.dir, sd.Filename))
}

// New constructs an Engine over a fresh or reopened queue directory.
func New(c *config.Config, queueDir string, graph *cfg.Graph, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := queue.NewStore(queueDir, logger)
	if err != nil {
		return nil, fmt.Errorf("engine: open queue store: %w", err)
	}

	schedType, err := c.ScheduleType()
	if err != nil {
		return nil, err
	}
	tieBreak, err := c.TieBreakPolicy()
	if err != nil {
		return nil, err
	}

	counters := schedule.NewFuzzCounters(c.MapSize)
	top := schedule.NewTopRated(c.MapSize, store, counters, logger)
	top.FixedSeed = c.FixedSeed
	top.Schedule = schedType

	var frontier *schedule.FrontierTracker
	var setcover *schedule.SetCoverScheduler
	rng := rand.New(rand.NewSource(1))
	if c.FixedSeed {
		rng = rand.New(rand.NewSource(424242))
	}
	if c.UseFrontierScheduler {
		if graph == nil {
			return nil, fmt.Errorf("engine: frontier scheduler enabled but no CFG graph was loaded")
		}
		frontier = schedule.NewFrontierTracker(graph, c.MapSize, logger)
		setcover = schedule.NewSetCoverScheduler(store, frontier, rng, logger)
	}

	cc := cache.New(c.TestcaseCache.MaxBytes, c.TestcaseCache.MaxEntries, diskLoader{store: store, dir: queueDir})

	var mn *minimize.Driver
	if c.Minimize.MinimizerPath != "" {
		mn = minimize.New(minimize.Config{
			Interval:            c.MinimizeInterval(),
			ScratchRoot:         os.TempDir(),
			TargetName:          "fluxqueue",
			MinimizerPath:       c.Minimize.MinimizerPath,
			InstrumentationMode: c.Minimize.InstrumentationMode,
			MapSize:             c.MapSize,
			CasefilePrefix:      "id:",
			PlotPath:            filepath.Join(c.Minimize.OutDir, "plot_data"),
		}, store, diskReader{dir: queueDir}, logger)
	}

	return &Engine{
		cfg:       c,
		store:     store,
		graph:     graph,
		log:       logger,
		top:       top,
		frontier:  frontier,
		setcover:  setcover,
		counters:  counters,
		weight:    schedule.WeightModel{Schedule: schedType, Counters: counters},
		score:     schedule.ScoreModel{Schedule: schedType, HavocMaxMult: c.HavocMaxMult, Counters: counters},
		cache:     cc,
		rng:       rng,
		minimizer: mn,
		tieBreak:  tieBreak,
	}, nil
}

// Store exposes the underlying queue store (read-mostly access for
// reporting and UI code).
func (e *Engine) Store() *queue.Store { return e.store }

// RecordDiscovery runs the per-discovery pipeline: frontier recording
// (component D, when enabled), then top-rated table update (component
// C), then assignment of the seed's n_fuzz entry from the edges its
// trace hit. Favored culling and the set-cover rebuild are deferred to the
// next NextSeed call, which only pays their cost when scores actually
// changed.
func (e *Engine) RecordDiscovery(candidate *queue.Seed, traceBits, virginBits []byte) {
	if e.frontier != nil {
		e.frontier.RecordSeed(candidate, traceBits, virginBits)
	}
	e.top.UpdateBitmapScore(candidate, traceBits)
	footprint := &queue.Seed{TraceMin: bitmap.FromTraceBits(traceBits)}
	candidate.NFuzzEntry = e.counters.Entry(footprint)
}

// NextSeed rebuilds favored/cover state if stale, rebuilds the alias
// table if the queue flagged a reinit, and draws one seed id to mutate
// next.
func (e *Engine) NextSeed() (*queue.Seed, error) {
	if e.store.ScoreChanged {
		if err := e.top.CullQueue(); err != nil {
			return nil, fmt.Errorf("engine: cull queue: %w", err)
		}
	}

	if e.setcover != nil {
		result := e.setcover.Run()
		if len(result.Cover) > 0 && !result.RandomPick {
			e.setcover.SelectTieBreak(result.Cover, schedule.TieBreakPolicy(e.tieBreak))
		}
	}

	if e.store.ReinitTable {
		if err := e.rebuildAliasTable(); err != nil {
			return nil, err
		}
		e.store.ReinitTable = false
	}
	if e.table == nil || e.table.Size() == 0 || len(e.aliasSeeds) != e.table.Size() {
		return nil, fmt.Errorf("engine: no active seeds to schedule")
	}

	idx := e.table.Draw()
	sd := e.aliasSeeds[idx]
	sd.FuzzLevel++
	e.counters.Increment(sd.NFuzzEntry)
	return sd, nil
}

func (e *Engine) rebuildAliasTable() error {
	var avg schedule.CorpusAverages
	var active []*queue.Seed
	var sumExec, sumLogBitmap, sumTCRef, sumNFuzzLog float64
	var totalExecs int64

	e.store.Each(func(sd *queue.Seed) {
		if sd.Disabled {
			return
		}
		active = append(active, sd)
		sumExec += float64(sd.ExecUs)
		if sd.TraceMin != nil {
			sumLogBitmap += logf(float64(sd.TraceMin.Popcount() + 1))
		}
		sumTCRef += float64(sd.TCRef)
		hits := e.counters.Get(sd.NFuzzEntry)
		sumNFuzzLog += log2f(float64(hits) + 1)
		totalExecs += int64(hits)
	})
	if len(active) == 0 {
		e.table = alias.Build(nil, e.rng)
		e.aliasSeeds = nil
		return nil
	}
	n := float64(len(active))
	avg = schedule.CorpusAverages{
		AvgExecUs:    sumExec / n,
		AvgLogBitmap: maxf(sumLogBitmap/n, 0.0001),
		AvgTCRef:     maxf(sumTCRef/n, 0.0001),
		AvgNFuzzLog:  sumNFuzzLog / n,
		TotalExecs:   totalExecs,
	}

	mostRecentFive := e.mostRecentFiveIDs(active)

	weights := make([]float64, len(active))
	for i, sd := range active {
		w := e.weight.Weight(sd, avg, mostRecentFive)
		s := e.score.Score(sd, avg, mostRecentFive)
		weights[i] = w * s
	}
	e.table = alias.Build(weights, e.rng)
	e.aliasSeeds = active
	return nil
}

func (e *Engine) mostRecentFiveIDs(active []*queue.Seed) map[int]bool {
	ids := make(map[int]bool, 5)
	n := len(active)
	start := n - 5
	if start < 0 {
		start = 0
	}
	for _, sd := range active[start:] {
		ids[sd.ID] = true
	}
	return ids
}

// ReadSeed returns the cached content of the chosen seed, loading it
// from disk on a cache miss.
func (e *Engine) ReadSeed(sd *queue.Seed) ([]byte, error) {
	return e.cache.Get(sd.ID, sd.ID)
}

// MaybeMinimize runs the periodic external minimization round if the
// interval has elapsed and a minimizer is configured.
func (e *Engine) MaybeMinimize(ctx context.Context, now time.Time) error {
	if e.minimizer == nil {
		return nil
	}
	return e.minimizer.MaybeRun(ctx, now)
}

// Snapshot captures current scheduler state for reporting/UI.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		QueueSize:       e.store.Count(),
		ActiveSeeds:     e.store.ActiveCount(),
		FavoredSeeds:    e.store.QueuedFavored,
		PendingFavored:  e.store.PendingFavored,
		CacheEntries:    e.cache.Len(),
		CacheMaxEntries: e.cache.MaxCount(),
	}
	if e.frontier != nil {
		s.FrontierEdges = e.frontier.Global().Popcount()
	}
	if e.table != nil {
		s.AliasTableSize = e.table.Size()
	}
	return s
}

func logf(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Log(x)
}

func log2f(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Log2(x)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
