package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGraph(t *testing.T, json string) *Graph {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(path, []byte(json), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return g
}

func TestLoadSuccessors(t *testing.T) {
	g := writeGraph(t, `[[1,2],[3],[],[4,5,6]]`)
	if g.Size() != 4 {
		t.Fatalf("Size = %d, want 4", g.Size())
	}
	if got := g.Successors(0); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Successors(0) = %v", got)
	}
	if got := g.Successors(2); len(got) != 0 {
		t.Fatalf("Successors(2) = %v, want empty", got)
	}
	if got := g.Successors(99); got != nil {
		t.Fatalf("Successors(99) = %v, want nil", got)
	}
}

func TestFrontierInnerAndOuter(t *testing.T) {
	g := writeGraph(t, `[[1,2],[],[]]`)
	virgin := []byte{0xff, 0xff, 0xff}
	trace := []byte{0x01, 0x00, 0x00}

	if !g.IsFrontierInner(0, virgin, trace) {
		t.Fatal("edge 0 should be an inner frontier: successor 1 unhit by trace")
	}
	if !g.IsFrontierOuter(0, virgin) {
		t.Fatal("edge 0 should be an outer frontier: successors never hit globally")
	}

	virgin2 := []byte{0xff, 0x00, 0x00}
	if g.IsFrontierOuter(0, virgin2) {
		t.Fatal("edge 0 should not be an outer frontier once both successors are hit")
	}

	if g.IsFrontierInner(1, virgin, trace) {
		t.Fatal("edge 1 has no successors, cannot be a frontier")
	}
}
