// Package ui provides statistics display components.
package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stats holds scheduler statistics sampled from engine snapshots.
type Stats struct {
	mu sync.RWMutex

	StartTime time.Time

	QueueSize       int64
	ActiveSeeds     int64
	FavoredSeeds    int64
	PendingFavored  int64
	FrontierEdges   int64
	CacheEntries    int64
	CacheMaxEntries int64
	AliasTableSize  int64

	TotalExecs int64
	LastExecs  int64
	lastSample time.Time

	LastMinimizeAt   time.Time
	LastMinimizeKept int64
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{
		StartTime:  time.Now(),
		lastSample: time.Now(),
	}
}

// RecordSnapshot absorbs one poll of scheduler state.
func (s *Stats) RecordSnapshot(queueSize, activeSeeds, favoredSeeds, pendingFavored, frontierEdges, cacheEntries, cacheMaxEntries, aliasTableSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.QueueSize = int64(queueSize)
	s.ActiveSeeds = int64(activeSeeds)
	s.FavoredSeeds = int64(favoredSeeds)
	s.PendingFavored = int64(pendingFavored)
	s.FrontierEdges = int64(frontierEdges)
	s.CacheEntries = int64(cacheEntries)
	s.CacheMaxEntries = int64(cacheMaxEntries)
	s.AliasTableSize = int64(aliasTableSize)
}

// RecordExec records that one more testcase was executed.
func (s *Stats) RecordExec() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalExecs++
}

// RecordMinimize records completion of a minimization round.
func (s *Stats) RecordMinimize(kept int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastMinimizeAt = time.Now()
	s.LastMinimizeKept = int64(kept)
}

// GetExecsPerSec returns the execution rate since the last call.
func (s *Stats) GetExecsPerSec() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := time.Since(s.lastSample).Seconds()
	if elapsed < 0.001 {
		return 0
	}
	delta := s.TotalExecs - s.LastExecs
	s.LastExecs = s.TotalExecs
	s.lastSample = time.Now()
	return float64(delta) / elapsed
}

// GetElapsedTime returns the elapsed time since start.
func (s *Stats) GetElapsedTime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.StartTime)
}

// GetFavoredRate returns the percentage (0-100) of active seeds that are favored.
func (s *Stats) GetFavoredRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ActiveSeeds == 0 {
		return 0
	}
	return float64(s.FavoredSeeds) / float64(s.ActiveSeeds) * 100
}

// GetCacheFillRate returns how full the testcase content cache is.
func (s *Stats) GetCacheFillRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.CacheMaxEntries == 0 {
		return 0
	}
	return float64(s.CacheEntries) / float64(s.CacheMaxEntries) * 100
}

// Snapshot returns an immutable copy of current stats.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StatsSnapshot{
		QueueSize:        s.QueueSize,
		ActiveSeeds:      s.ActiveSeeds,
		FavoredSeeds:     s.FavoredSeeds,
		PendingFavored:   s.PendingFavored,
		FrontierEdges:    s.FrontierEdges,
		CacheEntries:     s.CacheEntries,
		CacheMaxEntries:  s.CacheMaxEntries,
		AliasTableSize:   s.AliasTableSize,
		TotalExecs:       s.TotalExecs,
		ElapsedTime:      time.Since(s.StartTime),
		LastMinimizeAt:   s.LastMinimizeAt,
		LastMinimizeKept: s.LastMinimizeKept,
	}
}

// StatsSnapshot is an immutable snapshot of stats for rendering.
type StatsSnapshot struct {
	QueueSize        int64
	ActiveSeeds      int64
	FavoredSeeds     int64
	PendingFavored   int64
	FrontierEdges    int64
	CacheEntries     int64
	CacheMaxEntries  int64
	AliasTableSize   int64
	TotalExecs       int64
	ElapsedTime      time.Duration
	LastMinimizeAt   time.Time
	LastMinimizeKept int64
}

// StatsView renders the statistics panel.
type StatsView struct {
	width  int
	height int
}

// NewStatsView creates a new stats view.
func NewStatsView(width, height int) *StatsView {
	return &StatsView{width: width, height: height}
}

// SetSize updates the view size.
func (v *StatsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Render renders the stats view.
func (v *StatsView) Render(snap StatsSnapshot) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("📊 Queue"))
	b.WriteString("\n\n")

	b.WriteString(RenderLabelValue("Queue Size", formatNumber(snap.QueueSize)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Active", formatNumber(snap.ActiveSeeds)))
	b.WriteString("\n")

	b.WriteString(RenderLabel("Favored"))
	b.WriteString(" ")
	b.WriteString(FavoredStyle.Render(formatNumber(snap.FavoredSeeds)))
	b.WriteString(" | ")
	b.WriteString(RenderLabel("Pending"))
	b.WriteString(" ")
	b.WriteString(WarningStyle.Render(formatNumber(snap.PendingFavored)))
	b.WriteString("\n\n")

	b.WriteString(HeaderStyle.Render("⚡ Coverage"))
	b.WriteString("\n\n")

	b.WriteString(RenderLabel("Frontier"))
	b.WriteString(" ")
	b.WriteString(FrontierStyle.Render(formatNumber(snap.FrontierEdges)))
	b.WriteString(" edges\n")
	b.WriteString(RenderLabelValue("Total Execs", formatNumber(snap.TotalExecs)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Elapsed", formatDuration(snap.ElapsedTime)))
	b.WriteString("\n\n")

	b.WriteString(HeaderStyle.Render("🗃 Cache"))
	b.WriteString("\n\n")

	b.WriteString(RenderLabel("Entries"))
	b.WriteString(" ")
	b.WriteString(CacheStyle.Render(fmt.Sprintf("%d / %d", snap.CacheEntries, snap.CacheMaxEntries)))
	b.WriteString("\n")

	if !snap.LastMinimizeAt.IsZero() {
		b.WriteString(RenderLabelValue("Last cmin", snap.LastMinimizeAt.Format("15:04:05")))
		b.WriteString(" kept ")
		b.WriteString(ValueStyle.Render(fmt.Sprintf("%d", snap.LastMinimizeKept)))
		b.WriteString("\n")
	}

	return StatsPanelStyle.Width(v.width).Render(b.String())
}

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
