package queue

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store is the append-only, contiguous-by-id seed collection (component
// B). It owns the on-disk state marker directories and raises the
// side-effect flags downstream components consume.
type Store struct {
	seeds []*Seed
	dir   string // <out>/queue

	ScoreChanged bool // set whenever top-rated state changes
	ReinitTable  bool // set whenever the alias table must be rebuilt

	PendingNotFuzzed int
	PendingFavored   int
	QueuedFavored    int
	SmallestFavored  int // smallest id among favored-and-unfuzzed, -1 if none

	log *slog.Logger
}

// NewStore creates (or reuses) <dir> and its .state marker subdirectories.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, sub := range []string{"", ".state/deterministic_done", ".state/variable_behavior", ".state/redundant_edges"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("queue: create %s: %w", filepath.Join(dir, sub), err)
		}
	}
	return &Store{dir: dir, SmallestFavored: -1, log: logger}, nil
}

// Append adds seed to the store, assigning it the next dense id. Callers
// must have constructed seed with that same id (queue.NewSeed's id arg).
func (s *Store) Append(seed *Seed) (int, error) {
	id := len(s.seeds)
	if seed.ID != id {
		return 0, fmt.Errorf("queue: invariant violation: appended seed id %d, want %d", seed.ID, id)
	}
	s.seeds = append(s.seeds, seed)
	if !seed.WasFuzzed {
		s.PendingNotFuzzed++
	}
	s.ScoreChanged = true
	return id, nil
}

// Get returns the seed at id. Panics on out-of-range id (invariant
// violation per the error handling design — a corrupt queue is fatal).
func (s *Store) Get(id int) *Seed {
	if id < 0 || id >= len(s.seeds) {
		panic(fmt.Sprintf("queue: invariant violation: id %d out of range [0,%d)", id, len(s.seeds)))
	}
	return s.seeds[id]
}

// Count returns the total number of seeds ever appended.
func (s *Store) Count() int { return len(s.seeds) }

// ActiveCount returns the number of seeds not currently disabled.
func (s *Store) ActiveCount() int {
	n := 0
	for _, sd := range s.seeds {
		if !sd.Disabled {
			n++
		}
	}
	return n
}

// Each calls fn for every seed in ascending id order.
func (s *Store) Each(fn func(sd *Seed)) {
	for _, sd := range s.seeds {
		fn(sd)
	}
}

// SetDisabled toggles a seed's disabled flag without reindexing the
// store. Consumers needing a compact active view must filter themselves.
func (s *Store) SetDisabled(id int, disabled bool) {
	sd := s.Get(id)
	sd.Disabled = disabled
}

func (s *Store) markerPath(sub string, sd *Seed) string {
	return filepath.Join(s.dir, ".state", sub, sd.Filename)
}

// MarkDetDone creates the deterministic_done marker for sd and sets
// PassedDet, atomically with respect to the in-memory flag: the file is
// created first; only on success is the flag flipped.
func (s *Store) MarkDetDone(sd *Seed) error {
	if err := touch(s.markerPath("deterministic_done", sd)); err != nil {
		return fmt.Errorf("queue: fatal: create deterministic_done marker for %s: %w", sd.Filename, err)
	}
	sd.PassedDet = true
	return nil
}

// MarkVariable creates the variable_behavior marker (a symlink per §6)
// and sets VariableBehavior.
func (s *Store) MarkVariable(sd *Seed) error {
	path := s.markerPath("variable_behavior", sd)
	_ = os.Remove(path)
	if err := os.Symlink(filepath.Join("..", "..", sd.Filename), path); err != nil {
		return fmt.Errorf("queue: fatal: create variable_behavior marker for %s: %w", sd.Filename, err)
	}
	sd.VariableBehavior = true
	return nil
}

// MarkRedundant creates or removes the redundant_edges marker to match
// the fs_redundant flag being asserted.
func (s *Store) MarkRedundant(sd *Seed, redundant bool) error {
	path := s.markerPath("redundant_edges", sd)
	if redundant == sd.FSRedundant {
		return nil
	}
	if redundant {
		if err := touch(path); err != nil {
			return fmt.Errorf("queue: fatal: create redundant_edges marker for %s: %w", sd.Filename, err)
		}
	} else {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("queue: fatal: remove redundant_edges marker for %s: %w", sd.Filename, err)
		}
	}
	sd.FSRedundant = redundant
	return nil
}

func touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// RecomputePending walks the queue and recomputes PendingNotFuzzed and
// PendingFavored from scratch — used after minimization application,
// where many seeds flip disabled in one pass.
func (s *Store) RecomputePending() {
	s.PendingNotFuzzed = 0
	s.PendingFavored = 0
	for _, sd := range s.seeds {
		if sd.Disabled {
			continue
		}
		if !sd.WasFuzzed {
			s.PendingNotFuzzed++
			if sd.Favored {
				s.PendingFavored++
			}
		}
	}
}
