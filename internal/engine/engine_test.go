package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fluxqueue/fluxqueue/internal/bitmap"
	"github.com/fluxqueue/fluxqueue/internal/config"
	"github.com/fluxqueue/fluxqueue/internal/queue"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	c := config.DefaultConfig()
	c.MapSize = 64
	e, err := New(c, filepath.Join(dir, "queue"), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, dir
}

func addSeedWithContent(t *testing.T, e *Engine, dir string, content string, hitEdges []int) *queue.Seed {
	t.Helper()
	filename := "id:" + content
	sd := queue.NewSeed(e.Store().Count(), filename, -1, 0, e.Store().Count(), e.Store().Count())
	if _, err := e.Store().Append(sd); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "queue", filename), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	trace := make([]byte, 64)
	for _, edge := range hitEdges {
		trace[edge] = 1
	}
	sd.Len = len(content)
	sd.ExecUs = 100
	sd.TraceMin = bitmap.FromTraceBits(trace)

	virgin := make([]byte, 64)
	for i := range virgin {
		virgin[i] = 0xFF
	}
	e.RecordDiscovery(sd, trace, virgin)
	return sd
}

func TestEngineSchedulesAcrossDiscoveries(t *testing.T) {
	e, dir := newTestEngine(t)
	if err := os.MkdirAll(filepath.Join(dir, "queue"), 0o755); err != nil {
		t.Fatal(err)
	}

	addSeedWithContent(t, e, dir, "aaaa", []int{1, 2})
	addSeedWithContent(t, e, dir, "bbbb", []int{2, 3})

	sd, err := e.NextSeed()
	if err != nil {
		t.Fatalf("NextSeed: %v", err)
	}
	if sd == nil {
		t.Fatal("expected a seed")
	}
	if sd.FuzzLevel != 1 {
		t.Fatalf("expected FuzzLevel incremented to 1, got %d", sd.FuzzLevel)
	}

	data, err := e.ReadSeed(sd)
	if err != nil {
		t.Fatalf("ReadSeed: %v", err)
	}
	if len(data) != sd.Len {
		t.Fatalf("read %d bytes, want %d", len(data), sd.Len)
	}

	snap := e.Snapshot()
	if snap.QueueSize != 2 {
		t.Fatalf("QueueSize = %d, want 2", snap.QueueSize)
	}
	if snap.ActiveSeeds != 2 {
		t.Fatalf("ActiveSeeds = %d, want 2", snap.ActiveSeeds)
	}
}

func TestEngineRejectsFrontierWithoutGraph(t *testing.T) {
	dir := t.TempDir()
	c := config.DefaultConfig()
	c.UseFrontierScheduler = true
	if _, err := New(c, filepath.Join(dir, "queue"), nil, nil); err == nil {
		t.Fatal("expected error constructing engine with frontier scheduler but no CFG graph")
	}
}
