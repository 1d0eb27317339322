// Package minimize implements the periodic external corpus minimization
// driver (component I): every fixed interval, pause mutation, snapshot
// the active queue to a scratch directory, invoke an external minimizer,
// collect its surviving set by content hash, and disable from the live
// queue any seed not in that set.
package minimize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fluxqueue/fluxqueue/internal/queue"
)

// Config holds the minimizer's invocation parameters.
type Config struct {
	Interval             time.Duration
	ScratchRoot          string // system scratch root; two temp dirs are created under it per run
	TargetName           string // used to tag the scratch directories
	MinimizerPath        string
	MemLimit             string // e.g. "none" or "50M"
	Timeout              time.Duration
	InstrumentationMode  string // qemu|unicorn|frida|nyx|wine|""
	MapSize              int
	TargetArgv           []string
	TargetRootPrefix     string // substituted for "..." segments in TargetArgv
	FixedOutFile         string
	CasefilePrefix       string // "id:" or "id_"
	PlotPath             string
}

// FileReader abstracts reading a seed's on-disk contents, so the driver
// does not need to know the queue directory layout.
type FileReader interface {
	ReadSeedFile(sd *queue.Seed) ([]byte, error)
}

// Driver owns the three scheduler-level flags (inited, running,
// last_run_ms) and the scratch-directory lifecycle for one minimization
// round.
type Driver struct {
	cfg    Config
	store  *queue.Store
	reader FileReader
	log    *slog.Logger

	inited    bool
	running   bool
	lastRunAt time.Time
}

// New constructs a Driver. It does not run anything until MaybeRun fires.
func New(cfg Config, store *queue.Store, reader FileReader, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{cfg: cfg, store: store, reader: reader, log: logger}
}

// snapshotEntry pairs a queue seed with the content hash recorded at
// snapshot time.
type snapshotEntry struct {
	seed *queue.Seed
	hash uint64
}

// MaybeRun is the interval-gate entry point: idempotent, re-entrant-safe.
// It returns immediately if uninitialized (the first call just records
// now), already running, or the interval has not elapsed.
func (d *Driver) MaybeRun(ctx context.Context, now time.Time) error {
	if !d.inited {
		d.inited = true
		d.lastRunAt = now
		return nil
	}
	if d.running {
		return nil
	}
	if now.Sub(d.lastRunAt) < d.cfg.Interval {
		return nil
	}

	d.running = true
	defer func() { d.running = false }()

	err := d.runOnce(ctx)
	d.lastRunAt = now
	return err
}

func (d *Driver) runOnce(ctx context.Context) error {
	tag := fmt.Sprintf("%s-%d", d.cfg.TargetName, os.Getpid())
	inDir, err := os.MkdirTemp(d.cfg.ScratchRoot, "cmin-in-"+tag+"-")
	if err != nil {
		d.log.Warn("minimize: create input scratch dir failed, skipping round", "err", err)
		return nil
	}
	defer os.RemoveAll(inDir)

	outDir, err := os.MkdirTemp(d.cfg.ScratchRoot, "cmin-out-"+tag+"-")
	if err != nil {
		d.log.Warn("minimize: create output scratch dir failed, skipping round", "err", err)
		return nil
	}
	defer os.RemoveAll(outDir)

	snapshot, err := d.snapshot(inDir)
	if err != nil {
		d.log.Warn("minimize: snapshot failed, skipping round", "err", err)
		return nil
	}
	if len(snapshot) == 0 {
		return nil
	}

	if err := d.spawn(ctx, inDir, outDir); err != nil {
		d.log.Warn("minimize: minimizer exited non-zero, skipping round", "err", err)
		return nil
	}

	keep, err := d.collectKeepSet(outDir)
	if err != nil {
		d.log.Warn("minimize: keep-set collection failed, skipping filter application", "err", err)
		return nil
	}

	d.apply(snapshot, keep)
	d.writePlotLine(len(snapshot), len(keep))
	return nil
}

func (d *Driver) snapshot(inDir string) ([]snapshotEntry, error) {
	var out []snapshotEntry
	var walkErr error
	d.store.Each(func(sd *queue.Seed) {
		if walkErr != nil || sd.Disabled {
			return
		}
		if !strings.HasPrefix(sd.Filename, d.cfg.CasefilePrefix) {
			return
		}
		data, err := d.reader.ReadSeedFile(sd)
		if err != nil {
			walkErr = fmt.Errorf("read %s: %w", sd.Filename, err)
			return
		}
		if err := os.WriteFile(filepath.Join(inDir, sd.Filename), data, 0o644); err != nil {
			walkErr = fmt.Errorf("write snapshot copy of %s: %w", sd.Filename, err)
			return
		}
		out = append(out, snapshotEntry{seed: sd, hash: hash64(data)})
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

func (d *Driver) spawn(ctx context.Context, inDir, outDir string) error {
	argv, fixedPath := reconstructArgv(d.cfg.TargetArgv, d.cfg.TargetRootPrefix, d.cfg.FixedOutFile)

	args := []string{"-i", inDir, "-o", outDir, "-m", memLimitOrNone(d.cfg.MemLimit), "-t", strconv.FormatInt(d.cfg.Timeout.Milliseconds(), 10)}
	if d.cfg.InstrumentationMode != "" {
		args = append(args, "-"+d.cfg.InstrumentationMode[:1])
	}
	if fixedPath != "" {
		args = append(args, "-f", fixedPath)
	}
	args = append(args, "--")
	args = append(args, argv...)

	cmd := exec.CommandContext(ctx, d.cfg.MinimizerPath, args...)
	cmd.Env = append(os.Environ(),
		"AFL_NO_UI=1",
		"AFL_MAP_SIZE="+strconv.Itoa(d.cfg.MapSize),
		"ASAN_OPTIONS=abort_on_error=1:symbolize=0",
		"UBSAN_OPTIONS=halt_on_error=1:symbolize=0",
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("minimizer subprocess: %w", err)
	}
	return nil
}

func memLimitOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func (d *Driver) collectKeepSet(outDir string) ([]uint64, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("read output scratch dir: %w", err)
	}
	var hashes []uint64
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), d.cfg.CasefilePrefix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read kept file %s: %w", e.Name(), err)
		}
		hashes = append(hashes, hash64(data))
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return dedupSorted(hashes), nil
}

func dedupSorted(in []uint64) []uint64 {
	if len(in) == 0 {
		return in
	}
	out := in[:1]
	for _, h := range in[1:] {
		if h != out[len(out)-1] {
			out = append(out, h)
		}
	}
	return out
}

// apply enforces the one-slot-per-hash rule: each keep-set hash may
// revive at most one snapshot entry, even if several entries share
// identical content.
func (d *Driver) apply(snapshot []snapshotEntry, keep []uint64) {
	consumed := make([]bool, len(keep))
	for _, entry := range snapshot {
		idx := keepIndex(keep, entry.hash)
		if idx >= 0 && !consumed[idx] {
			consumed[idx] = true
			entry.seed.Disabled = false
		} else {
			entry.seed.Disabled = true
		}
	}
	d.store.RecomputePending()
	d.store.ScoreChanged = true
	d.store.ReinitTable = true
}

func keepIndex(keep []uint64, h uint64) int {
	i := sort.Search(len(keep), func(i int) bool { return keep[i] >= h })
	if i < len(keep) && keep[i] == h {
		return i
	}
	return -1
}

func (d *Driver) writePlotLine(total, kept int) {
	if d.cfg.PlotPath == "" {
		return
	}
	f, err := os.OpenFile(d.cfg.PlotPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		d.log.Warn("minimize: open plot file failed", "err", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "Total corpus size : [%d]  |  Corpus size after cmin :  [%d]\n", total, kept)
}
