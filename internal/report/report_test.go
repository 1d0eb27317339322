package report

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNewReport(t *testing.T) {
	r := NewReport("Test Report")
	if r == nil {
		t.Fatal("NewReport returned nil")
	}
	if r.Title != "Test Report" {
		t.Errorf("Expected title 'Test Report', got '%s'", r.Title)
	}
	if r.GeneratedAt.IsZero() {
		t.Error("expected GeneratedAt to be set")
	}
}

func TestReport_AddEvent(t *testing.T) {
	r := NewReport("Test")
	r.AddEvent("favored", "seed 12 entered the favored set")

	if len(r.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(r.Events))
	}
	if r.Events[0].Kind != "favored" {
		t.Errorf("expected kind 'favored', got %q", r.Events[0].Kind)
	}
}

func TestReport_FilterByKind(t *testing.T) {
	r := NewReport("Test")
	r.AddEvent("favored", "seed 1")
	r.AddEvent("minimize", "cmin round")
	r.AddEvent("favored", "seed 2")

	favored := r.FilterByKind("favored")
	if len(favored) != 2 {
		t.Errorf("Expected 2 favored events, got %d", len(favored))
	}

	minimize := r.FilterByKind("minimize")
	if len(minimize) != 1 {
		t.Errorf("Expected 1 minimize event, got %d", len(minimize))
	}
}

func TestJSONGenerator(t *testing.T) {
	r := NewReport("Test Report")
	r.QueueSize = 100
	r.ActiveSeeds = 80
	r.FavoredSeeds = 12
	r.AddEvent("favored", "seed 3 entered the favored set")

	gen := &JSONGenerator{Indent: true}

	var buf bytes.Buffer
	if err := gen.Generate(r, &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if parsed["title"] != "Test Report" {
		t.Errorf("Expected title 'Test Report' in JSON")
	}
}

func TestJSONGenerator_Extension(t *testing.T) {
	gen := &JSONGenerator{}
	if gen.Extension() != "json" {
		t.Errorf("Expected extension 'json', got '%s'", gen.Extension())
	}
}

func TestHTMLGenerator(t *testing.T) {
	r := NewReport("Test Report")
	r.QueueSize = 100
	r.ActiveSeeds = 80
	r.FavoredSeeds = 12
	r.FrontierEdges = 340
	r.AddEvent("minimize", "cmin round kept 40 of 100")

	gen := NewHTMLGenerator()

	var buf bytes.Buffer
	if err := gen.Generate(r, &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "<!DOCTYPE html>") {
		t.Error("Expected DOCTYPE in HTML output")
	}
	if !strings.Contains(output, "<title>Test Report") {
		t.Error("Expected title in HTML output")
	}
	if !strings.Contains(output, "queue state") {
		t.Error("Expected queue state section in HTML output")
	}
	if !strings.Contains(output, "cmin round kept 40 of 100") {
		t.Error("Expected event text in HTML output")
	}
}

func TestHTMLGenerator_Extension(t *testing.T) {
	gen := NewHTMLGenerator()
	if gen.Extension() != "html" {
		t.Errorf("Expected extension 'html', got '%s'", gen.Extension())
	}
}

func TestHTMLGenerator_NoEvents(t *testing.T) {
	r := NewReport("Empty")
	gen := NewHTMLGenerator()

	var buf bytes.Buffer
	if err := gen.Generate(r, &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "no events recorded") {
		t.Error("expected no-events placeholder in output")
	}
}

func TestManager(t *testing.T) {
	tmpDir := t.TempDir()
	m := NewManager(tmpDir)

	if _, ok := m.GetGenerator("json"); !ok {
		t.Error("Expected json generator to be registered")
	}
	if _, ok := m.GetGenerator("html"); !ok {
		t.Error("Expected html generator to be registered")
	}
}

func TestManager_Generate(t *testing.T) {
	tmpDir := t.TempDir()
	m := NewManager(tmpDir)

	r := NewReport("Test")
	r.AddEvent("favored", "test event")

	path, err := m.Generate(r, "json")
	if err != nil {
		t.Fatalf("Generate JSON failed: %v", err)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("Expected .json extension, got %s", path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Report file was not created: %s", path)
	}
}

func TestManager_Generate_UnknownFormat(t *testing.T) {
	tmpDir := t.TempDir()
	m := NewManager(tmpDir)

	r := NewReport("Test")
	if _, err := m.Generate(r, "unknown"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestManager_GenerateAll(t *testing.T) {
	tmpDir := t.TempDir()
	m := NewManager(tmpDir)

	r := NewReport("Test")
	paths, err := m.GenerateAll(r)
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if len(paths) < 2 {
		t.Errorf("Expected at least 2 files, got %d", len(paths))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Errorf("Report file was not created: %s", p)
		}
	}
}

func TestManager_WriteToWriter(t *testing.T) {
	m := NewManager("")

	r := NewReport("Test")
	var buf bytes.Buffer
	if err := m.WriteToWriter(r, "json", &buf); err != nil {
		t.Fatalf("WriteToWriter failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Expected non-empty output")
	}
}

func BenchmarkJSONGenerator(b *testing.B) {
	r := createTestReport(100)
	gen := &JSONGenerator{Indent: false}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		gen.Generate(r, &buf)
	}
}

func BenchmarkHTMLGenerator(b *testing.B) {
	r := createTestReport(100)
	gen := NewHTMLGenerator()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		gen.Generate(r, &buf)
	}
}

func createTestReport(numEvents int) *Report {
	r := NewReport("Benchmark Report")
	r.QueueSize = 10000
	r.ActiveSeeds = 9500
	r.FavoredSeeds = 500
	r.RunDuration = 10 * time.Minute

	kinds := []string{"favored", "minimize", "frontier"}
	for i := 0; i < numEvents; i++ {
		r.AddEvent(kinds[i%len(kinds)], "test event")
	}
	return r
}

func TestIntegration_FullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()

	r := NewReport("Integration Test")
	r.QueueSize = 5000
	r.ActiveSeeds = 4800
	r.FavoredSeeds = 200
	r.FrontierEdges = 1200
	r.LastMinimizeAt = time.Now()
	r.LastMinimizeKept = 400
	r.LastMinimizeTotal = 5000

	r.AddEvent("favored", "seed 91 entered the favored set")
	r.AddEvent("minimize", "cmin round kept 400 of 5000")

	m := NewManager(tmpDir)
	paths, err := m.GenerateAll(r)
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			t.Errorf("File not created: %s", p)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("File is empty: %s", p)
		}
	}
}
