package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status represents the dashboard state.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusPaused:
		return "Paused"
	case StatusStopped:
		return "Stopped"
	default:
		return "Idle"
	}
}

// LogEntry represents a log message shown in the activity panel.
type LogEntry struct {
	Time    time.Time
	Level   string
	Message string
}

// SchedulerSnapshot is the subset of engine state the dashboard renders.
// Kept as its own type so ui does not import the engine package directly.
type SchedulerSnapshot struct {
	QueueSize       int
	ActiveSeeds     int
	FavoredSeeds    int
	PendingFavored  int
	FrontierEdges   int
	CacheEntries    int
	CacheMaxEntries int
	AliasTableSize  int
	LastMinimizeAt  time.Time
}

// SnapshotFunc polls current scheduler state.
type SnapshotFunc func() SchedulerSnapshot

// Dashboard is the main TUI model.
type Dashboard struct {
	width  int
	height int

	status    Status
	stats     *Stats
	statsView *StatsView
	progress  *ProgressView
	spinner   *SpinnerProgress

	snapshotFn SnapshotFunc

	logs    []LogEntry
	maxLogs int

	queueDir string

	tickCount int
}

// NewDashboard creates a new dashboard instance polling snapshotFn.
func NewDashboard(snapshotFn SnapshotFunc) *Dashboard {
	return &Dashboard{
		width:      80,
		height:     24,
		status:     StatusIdle,
		stats:      NewStats(),
		statsView:  NewStatsView(40, 15),
		progress:   NewProgressView(70),
		spinner:    NewSpinnerProgress(),
		snapshotFn: snapshotFn,
		logs:       make([]LogEntry, 0, 100),
		maxLogs:    50,
	}
}

// SetQueueDir sets the queue directory to display.
func (d *Dashboard) SetQueueDir(dir string) {
	d.queueDir = dir
}

// AddLog adds a log entry.
func (d *Dashboard) AddLog(level, message string) {
	d.logs = append(d.logs, LogEntry{Time: time.Now(), Level: level, Message: message})
	if len(d.logs) > d.maxLogs {
		d.logs = d.logs[len(d.logs)-d.maxLogs:]
	}
}

// GetStats returns the stats for external updates.
func (d *Dashboard) GetStats() *Stats {
	return d.stats
}

// Start marks the scheduler as running.
func (d *Dashboard) Start() {
	d.status = StatusRunning
	d.spinner.Start()
	d.AddLog("INFO", "scheduler started")
}

// Pause marks the scheduler as paused.
func (d *Dashboard) Pause() {
	d.status = StatusPaused
	d.spinner.Stop()
	d.AddLog("INFO", "scheduler paused")
}

// Resume resumes the scheduler.
func (d *Dashboard) Resume() {
	d.status = StatusRunning
	d.spinner.Start()
	d.AddLog("INFO", "scheduler resumed")
}

// Stop stops the scheduler.
func (d *Dashboard) Stop() {
	d.status = StatusStopped
	d.spinner.Stop()
	d.AddLog("INFO", "scheduler stopped")
}

// --- Bubbletea Model interface ---

// TickMsg is sent on each animation tick.
type TickMsg time.Time

// Init initializes the model.
func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles messages.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		case "p":
			if d.status == StatusRunning {
				d.Pause()
			} else if d.status == StatusPaused {
				d.Resume()
			}
		case "r":
			if d.status == StatusPaused || d.status == StatusStopped || d.status == StatusIdle {
				d.Resume()
			}
		case "s":
			if d.status == StatusRunning || d.status == StatusPaused {
				d.Stop()
			}
		}

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		d.statsView.SetSize(d.width/3, d.height-10)
		d.progress.SetSize(d.width - 4)

	case TickMsg:
		d.tickCount++
		d.spinner.Tick()

		if d.snapshotFn != nil {
			snap := d.snapshotFn()
			d.stats.RecordSnapshot(snap.QueueSize, snap.ActiveSeeds, snap.FavoredSeeds,
				snap.PendingFavored, snap.FrontierEdges, snap.CacheEntries, snap.CacheMaxEntries, snap.AliasTableSize)
			if !snap.LastMinimizeAt.IsZero() {
				d.stats.RecordMinimize(int(d.stats.LastMinimizeKept))
			}
			d.progress.Update(int64(snap.ActiveSeeds), int64(snap.QueueSize), "")
		}

		return d, tickCmd()
	}

	return d, nil
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	if d.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(d.renderHeader())
	b.WriteString("\n")

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, d.renderStatsPanel(), d.renderLogPanel())
	b.WriteString(mainContent)
	b.WriteString("\n")

	b.WriteString(d.renderProgress())
	b.WriteString("\n")

	b.WriteString(d.renderFooter())

	return b.String()
}

func (d *Dashboard) renderHeader() string {
	title := TitleStyle.Render("⚡ fluxqueue")

	var statusText string
	switch d.status {
	case StatusRunning:
		statusText = RunningStyle.Render("● RUNNING")
	case StatusPaused:
		statusText = PausedStyle.Render("⏸ PAUSED")
	case StatusStopped:
		statusText = StoppedStyle.Render("■ STOPPED")
	default:
		statusText = HelpStyle.Render("○ IDLE")
	}

	queue := ""
	if d.queueDir != "" {
		queue = LabelStyle.Render("Queue: ") + InfoStyle.Render(d.queueDir)
	}

	leftSide := title + "  " + statusText
	rightSide := queue

	padding := d.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide) - 2
	if padding < 0 {
		padding = 0
	}

	header := leftSide + strings.Repeat(" ", padding) + rightSide
	return BoxStyle.Width(d.width - 2).Render(header)
}

func (d *Dashboard) renderStatsPanel() string {
	return d.statsView.Render(d.stats.Snapshot())
}

func (d *Dashboard) renderLogPanel() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("📝 Activity Log"))
	b.WriteString("\n\n")

	startIdx := 0
	if len(d.logs) > 8 {
		startIdx = len(d.logs) - 8
	}

	for i := startIdx; i < len(d.logs); i++ {
		log := d.logs[i]
		timeStr := log.Time.Format("15:04:05")

		var levelStyle lipgloss.Style
		switch log.Level {
		case "ERROR":
			levelStyle = ErrorStyle
		case "WARN":
			levelStyle = WarningStyle
		case "INFO":
			levelStyle = InfoStyle
		default:
			levelStyle = HelpStyle
		}

		line := fmt.Sprintf("%s %s %s",
			HelpStyle.Render(timeStr),
			levelStyle.Render(fmt.Sprintf("%-5s", log.Level)),
			log.Message,
		)

		if len(line) > d.width/2-10 {
			line = line[:d.width/2-13] + "..."
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return LogPanelStyle.Width(d.width/2 - 4).Render(b.String())
}

func (d *Dashboard) renderProgress() string {
	return d.progress.Render()
}

func (d *Dashboard) renderFooter() string {
	var helps []string

	if d.status == StatusRunning {
		helps = append(helps, RenderHelp("p", "pause"))
		helps = append(helps, RenderHelp("s", "stop"))
	} else if d.status == StatusPaused {
		helps = append(helps, RenderHelp("r", "resume"))
		helps = append(helps, RenderHelp("s", "stop"))
	} else if d.status == StatusStopped || d.status == StatusIdle {
		helps = append(helps, RenderHelp("r", "start"))
	}

	helps = append(helps, RenderHelp("q", "quit"))

	return FooterStyle.Render(strings.Join(helps, "  "))
}

// Run starts the TUI application.
func Run(d *Dashboard) error {
	p := tea.NewProgram(d, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunWithProgram returns the tea.Program for external control.
func RunWithProgram(d *Dashboard) *tea.Program {
	return tea.NewProgram(d, tea.WithAltScreen())
}
