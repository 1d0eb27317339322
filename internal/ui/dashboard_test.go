package ui

import (
	"testing"
	"time"
)

func testSnapshotFn() SchedulerSnapshot {
	return SchedulerSnapshot{}
}

func TestNewDashboard(t *testing.T) {
	d := NewDashboard(testSnapshotFn)

	if d == nil {
		t.Fatal("NewDashboard returned nil")
	}

	if d.status != StatusIdle {
		t.Errorf("Expected StatusIdle, got %v", d.status)
	}

	if d.stats == nil {
		t.Error("Stats should not be nil")
	}
}

func TestDashboard_StatusTransitions(t *testing.T) {
	d := NewDashboard(testSnapshotFn)

	d.Start()
	if d.status != StatusRunning {
		t.Errorf("Expected StatusRunning after Start, got %v", d.status)
	}

	d.Pause()
	if d.status != StatusPaused {
		t.Errorf("Expected StatusPaused after Pause, got %v", d.status)
	}

	d.Resume()
	if d.status != StatusRunning {
		t.Errorf("Expected StatusRunning after Resume, got %v", d.status)
	}

	d.Stop()
	if d.status != StatusStopped {
		t.Errorf("Expected StatusStopped after Stop, got %v", d.status)
	}
}

func TestDashboard_AddLog(t *testing.T) {
	d := NewDashboard(testSnapshotFn)

	d.AddLog("INFO", "test message 1")
	d.AddLog("ERROR", "test message 2")

	if len(d.logs) != 2 {
		t.Errorf("Expected 2 logs, got %d", len(d.logs))
	}

	if d.logs[0].Level != "INFO" {
		t.Errorf("Expected first log level INFO, got %s", d.logs[0].Level)
	}

	if d.logs[1].Message != "test message 2" {
		t.Errorf("Expected second log message 'test message 2', got %s", d.logs[1].Message)
	}
}

func TestDashboard_LogTrimming(t *testing.T) {
	d := NewDashboard(testSnapshotFn)
	d.maxLogs = 5

	for i := 0; i < 10; i++ {
		d.AddLog("INFO", "message")
	}

	if len(d.logs) != 5 {
		t.Errorf("Expected %d logs after trimming, got %d", d.maxLogs, len(d.logs))
	}
}

func TestDashboard_SetQueueDir(t *testing.T) {
	d := NewDashboard(testSnapshotFn)
	d.SetQueueDir("/tmp/queue-out")

	if d.queueDir != "/tmp/queue-out" {
		t.Errorf("Expected queueDir to be set, got %q", d.queueDir)
	}
}

func TestStats_RecordSnapshot(t *testing.T) {
	s := NewStats()

	s.RecordSnapshot(100, 80, 12, 3, 40, 500, 5000, 80)

	if s.QueueSize != 100 {
		t.Errorf("Expected QueueSize 100, got %d", s.QueueSize)
	}
	if s.FavoredSeeds != 12 {
		t.Errorf("Expected FavoredSeeds 12, got %d", s.FavoredSeeds)
	}
	if s.FrontierEdges != 40 {
		t.Errorf("Expected FrontierEdges 40, got %d", s.FrontierEdges)
	}
}

func TestStats_RecordMinimize(t *testing.T) {
	s := NewStats()

	s.RecordMinimize(37)

	if s.LastMinimizeKept != 37 {
		t.Errorf("Expected LastMinimizeKept 37, got %d", s.LastMinimizeKept)
	}
	if s.LastMinimizeAt.IsZero() {
		t.Error("Expected LastMinimizeAt to be set")
	}
}

func TestStats_GetFavoredRate(t *testing.T) {
	s := NewStats()

	if s.GetFavoredRate() != 0 {
		t.Errorf("Expected 0 favored rate with no active seeds, got %f", s.GetFavoredRate())
	}

	s.RecordSnapshot(100, 40, 10, 0, 0, 0, 0, 0)
	rate := s.GetFavoredRate()
	if rate != 25.0 {
		t.Errorf("Expected 25%% favored rate, got %f", rate)
	}
}

func TestStats_GetCacheFillRate(t *testing.T) {
	s := NewStats()

	s.RecordSnapshot(0, 0, 0, 0, 0, 250, 1000, 0)
	rate := s.GetCacheFillRate()
	if rate != 25.0 {
		t.Errorf("Expected 25%% cache fill rate, got %f", rate)
	}
}

func TestStats_Snapshot(t *testing.T) {
	s := NewStats()

	s.RecordSnapshot(50, 40, 8, 2, 20, 100, 1000, 40)
	s.RecordExec()

	snap := s.Snapshot()

	if snap.QueueSize != 50 {
		t.Errorf("Snapshot QueueSize: expected 50, got %d", snap.QueueSize)
	}
	if snap.TotalExecs != 1 {
		t.Errorf("Snapshot TotalExecs: expected 1, got %d", snap.TotalExecs)
	}
}

func TestProgressBar(t *testing.T) {
	p := NewProgressBar(50)

	p.SetProgress(0.5)
	p.SetETA("5m30s")

	rendered := p.Render()

	if rendered == "" {
		t.Error("ProgressBar Render returned empty string")
	}
	if len(rendered) < 10 {
		t.Error("ProgressBar Render output too short")
	}
}

func TestProgressBar_Bounds(t *testing.T) {
	p := NewProgressBar(50)

	p.SetProgress(-0.5)
	if p.percentage != 0 {
		t.Errorf("Expected percentage clamped to 0, got %f", p.percentage)
	}

	p.SetProgress(1.5)
	if p.percentage != 1 {
		t.Errorf("Expected percentage clamped to 1, got %f", p.percentage)
	}
}

func TestSpinnerProgress(t *testing.T) {
	s := NewSpinnerProgress()

	s.SetText("loading...")

	if !s.running {
		t.Error("Spinner should be running by default")
	}

	initialFrame := s.frame
	s.Tick()
	s.Tick()

	if s.frame == initialFrame {
		t.Error("Spinner frame should change after Tick")
	}

	s.Stop()
	if s.running {
		t.Error("Spinner should not be running after Stop")
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusIdle, "Idle"},
		{StatusRunning, "Running"},
		{StatusPaused, "Paused"},
		{StatusStopped, "Stopped"},
	}

	for _, tt := range tests {
		if tt.status.String() != tt.expected {
			t.Errorf("Status.String(): expected %s, got %s", tt.expected, tt.status.String())
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{1000000, "1.0M"},
		{1500000, "1.5M"},
	}

	for _, tt := range tests {
		result := formatNumber(tt.input)
		if result != tt.expected {
			t.Errorf("formatNumber(%d): expected %s, got %s", tt.input, tt.expected, result)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{500 * time.Microsecond, "500µs"},
		{50 * time.Millisecond, "50ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
		{90 * time.Minute, "1h30m"},
	}

	for _, tt := range tests {
		result := formatDuration(tt.input)
		if result != tt.expected {
			t.Errorf("formatDuration(%v): expected %s, got %s", tt.input, tt.expected, result)
		}
	}
}

func BenchmarkStats_RecordSnapshot(b *testing.B) {
	s := NewStats()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.RecordSnapshot(100, 80, 12, 3, 40, 500, 5000, 80)
	}
}

func BenchmarkStats_Snapshot(b *testing.B) {
	s := NewStats()

	for i := 0; i < 1000; i++ {
		s.RecordSnapshot(100, 80, 12, 3, 40, 500, 5000, 80)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Snapshot()
	}
}

func BenchmarkDashboard_View(b *testing.B) {
	d := NewDashboard(testSnapshotFn)
	d.width = 120
	d.height = 40
	d.Start()

	for i := 0; i < 20; i++ {
		d.AddLog("INFO", "test message")
	}

	for i := 0; i < 100; i++ {
		d.stats.RecordSnapshot(100, 80, 12, 3, 40, 500, 5000, 80)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.View()
	}
}
