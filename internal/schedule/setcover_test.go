package schedule

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/fluxqueue/fluxqueue/internal/cfg"
	"github.com/fluxqueue/fluxqueue/internal/queue"
)

func writeCFG(t *testing.T, mapSize int) *cfg.Graph {
	t.Helper()
	// Every edge gets an empty successor list; the tests set frontier
	// state directly rather than classifying it through the graph.
	entries := make([]string, mapSize)
	for i := range entries {
		entries[i] = "[]"
	}
	path := filepath.Join(t.TempDir(), "cfg.json")
	data := "[" + joinStrings(entries, ",") + "]"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := cfg.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func TestFrontierSetCoverSizeTwo(t *testing.T) {
	dir := t.TempDir()
	st, err := queue.NewStore(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	const mapSize = 16
	graph := writeCFG(t, mapSize)
	ft := NewFrontierTracker(graph, mapSize, nil)

	seeds := []struct {
		id       int
		edges    []int
		execUs   int64
	}{
		{0, []int{10, 11}, 100},
		{1, []int{11, 12}, 120},
		{2, []int{12, 13}, 90},
		{3, []int{10, 13}, 110},
	}
	all := make([]*queue.Seed, len(seeds))
	for _, s := range seeds {
		sd := queue.NewSeed(s.id, "id:seed", -1, 0, 0, 0)
		sd.ExecUs = s.execUs
		sd.FrontierNodes = s.edges
		if _, err := st.Append(sd); err != nil {
			t.Fatal(err)
		}
		all[s.id] = sd
		for _, e := range s.edges {
			ft.Global().Set(e)
		}
	}

	sc := NewSetCoverScheduler(st, ft, rand.New(rand.NewSource(1)), nil)
	result := sc.Run()
	if result.Partial {
		t.Fatal("expected full cover")
	}
	if len(result.Cover) != 2 {
		t.Fatalf("cover size = %d, want 2", len(result.Cover))
	}

	union := map[int]bool{}
	for _, sd := range result.Cover {
		for _, e := range sd.FrontierNodes {
			union[e] = true
		}
	}
	for _, e := range []int{10, 11, 12, 13} {
		if !union[e] {
			t.Fatalf("cover does not cover edge %d", e)
		}
	}

	for _, policy := range []TieBreakPolicy{
		TieBreakPriorityPolicy, TieBreakLatestPolicy, TieBreakFastestPolicy, TieBreakCoveringLatestFrontierPolicy,
	} {
		for _, sd := range all {
			sd.SetFavored = false
		}
		chosen := sc.SelectTieBreak(result.Cover, policy)
		if chosen == nil {
			t.Fatalf("policy %v: no seed chosen", policy)
		}
		found := false
		for _, sd := range result.Cover {
			if sd == chosen {
				found = true
			}
		}
		if !found {
			t.Fatalf("policy %v: chosen seed not in cover", policy)
		}
	}
}
