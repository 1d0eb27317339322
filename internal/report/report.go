// Package report generates human-readable scheduler state reports from
// engine snapshots, the same data the TUI and web dashboard render live.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Event records one favored-set or frontier change worth surfacing in a
// report: a new seed entering the favored set, a minimization round
// completing, or the frontier growing.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"` // "favored", "minimize", "frontier"
	Description string    `json:"description"`
}

// Report is one rendered view of scheduler state over a run.
type Report struct {
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	RunDuration time.Duration `json:"run_duration"`

	QueueSize       int `json:"queue_size"`
	ActiveSeeds     int `json:"active_seeds"`
	FavoredSeeds    int `json:"favored_seeds"`
	PendingFavored  int `json:"pending_favored"`
	FrontierEdges   int `json:"frontier_edges"`
	CacheEntries    int `json:"cache_entries"`
	CacheMaxEntries int `json:"cache_max_entries"`
	AliasTableSize  int `json:"alias_table_size"`

	LastMinimizeAt   time.Time `json:"last_minimize_at,omitempty"`
	LastMinimizeKept int       `json:"last_minimize_kept,omitempty"`
	LastMinimizeTotal int      `json:"last_minimize_total,omitempty"`

	Events []Event `json:"events"`
}

// NewReport creates an empty report for the given title.
func NewReport(title string) *Report {
	return &Report{
		Title:       title,
		GeneratedAt: time.Now(),
	}
}

// AddEvent appends one timestamped scheduler event.
func (r *Report) AddEvent(kind, description string) {
	r.Events = append(r.Events, Event{
		Timestamp:   time.Now(),
		Kind:        kind,
		Description: description,
	})
}

// FilterByKind returns events of the given kind.
func (r *Report) FilterByKind(kind string) []Event {
	var filtered []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Generator is the interface for report generators.
type Generator interface {
	Generate(report *Report, w io.Writer) error
	Extension() string
}

// Manager manages report generation across registered formats.
type Manager struct {
	generators map[string]Generator
	outputDir  string
}

// NewManager creates a manager with the default JSON and HTML generators.
func NewManager(outputDir string) *Manager {
	m := &Manager{
		generators: make(map[string]Generator),
		outputDir:  outputDir,
	}
	m.RegisterGenerator("json", &JSONGenerator{Indent: true})
	m.RegisterGenerator("html", NewHTMLGenerator())
	return m
}

// RegisterGenerator registers a generator under a format name.
func (m *Manager) RegisterGenerator(format string, gen Generator) {
	m.generators[format] = gen
}

// GetGenerator returns a generator by format.
func (m *Manager) GetGenerator(format string) (Generator, bool) {
	gen, ok := m.generators[format]
	return gen, ok
}

// Generate renders a report in the given format and writes it under the
// manager's output directory, returning the file path.
func (m *Manager) Generate(report *Report, format string) (string, error) {
	gen, ok := m.generators[format]
	if !ok {
		return "", fmt.Errorf("unknown report format: %s", format)
	}

	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("report_%s.%s", timestamp, gen.Extension())
	path := filepath.Join(m.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := gen.Generate(report, f); err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}
	return path, nil
}

// GenerateAll generates a report in every registered format.
func (m *Manager) GenerateAll(report *Report) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for format, gen := range m.generators {
		ext := gen.Extension()
		if seen[ext] {
			continue
		}
		seen[ext] = true
		path, err := m.Generate(report, format)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteToWriter renders a report directly to w without touching disk.
func (m *Manager) WriteToWriter(report *Report, format string, w io.Writer) error {
	gen, ok := m.generators[format]
	if !ok {
		return fmt.Errorf("unknown report format: %s", format)
	}
	return gen.Generate(report, w)
}
