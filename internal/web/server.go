// Package web provides the web dashboard server, broadcasting live
// scheduler snapshots to connected browsers over a websocket.
package web

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/fluxqueue/fluxqueue/internal/engine"
)

// Server serves the dashboard and relays scheduler snapshots to clients.
type Server struct {
	app *fiber.App
	eng *engine.Engine

	mu        sync.RWMutex
	startedAt time.Time
	events    []Event
	maxEvents int

	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan []byte

	stopPoll chan struct{}
}

// SchedulerStats is the JSON shape pushed to the dashboard.
type SchedulerStats struct {
	QueueSize       int    `json:"queueSize"`
	ActiveSeeds     int    `json:"activeSeeds"`
	FavoredSeeds    int    `json:"favoredSeeds"`
	PendingFavored  int    `json:"pendingFavored"`
	FrontierEdges   int    `json:"frontierEdges"`
	CacheEntries    int    `json:"cacheEntries"`
	CacheMaxEntries int    `json:"cacheMaxEntries"`
	AliasTableSize  int    `json:"aliasTableSize"`
	LastMinimizeAt  string `json:"lastMinimizeAt,omitempty"`
	ElapsedTime     string `json:"elapsedTime"`
}

// Event is one scheduler event surfaced to the live feed.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
}

// NewServer creates a dashboard server over an already-constructed engine.
func NewServer(eng *engine.Engine) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:       app,
		eng:       eng,
		startedAt: time.Now(),
		maxEvents: 200,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 100),
		stopPoll:  make(chan struct{}),
	}

	s.setupRoutes()
	go s.handleBroadcast()
	go s.pollSnapshots()

	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(cors.New())

	api := s.app.Group("/api")
	api.Get("/stats", s.handleStats)
	api.Get("/events", s.handleEvents)
	api.Post("/minimize", s.handleMinimizeNow)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleWebSocket))

	s.app.Get("/", s.handleDashboard)
	s.app.Get("/dashboard.js", s.handleDashboardJS)
	s.app.Get("/dashboard.css", s.handleDashboardCSS)
}

func (s *Server) currentStats() SchedulerStats {
	snap := s.eng.Snapshot()
	stats := SchedulerStats{
		QueueSize:       snap.QueueSize,
		ActiveSeeds:     snap.ActiveSeeds,
		FavoredSeeds:    snap.FavoredSeeds,
		PendingFavored:  snap.PendingFavored,
		FrontierEdges:   snap.FrontierEdges,
		CacheEntries:    snap.CacheEntries,
		CacheMaxEntries: snap.CacheMaxEntries,
		AliasTableSize:  snap.AliasTableSize,
		ElapsedTime:     time.Since(s.startedAt).Round(time.Second).String(),
	}
	if !snap.LastMinimizeAt.IsZero() {
		stats.LastMinimizeAt = snap.LastMinimizeAt.Format(time.RFC3339)
	}
	return stats
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.currentStats())
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.events)
}

// handleMinimizeNow records a "minimize" event (broadcast to connected
// clients) and replies {"status":"requested"}. It does not start a
// minimization pass or reset the driver's interval; passes run only when
// MaybeMinimize's interval gate allows.
func (s *Server) handleMinimizeNow(c *fiber.Ctx) error {
	s.RecordEvent("minimize", "minimization requested from dashboard")
	return c.JSON(fiber.Map{"status": "requested"})
}

func (s *Server) handleWebSocket(c *websocket.Conn) {
	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		c.Close()
	}()

	data, _ := json.Marshal(map[string]interface{}{
		"type": "stats",
		"data": s.currentStats(),
	})
	c.WriteMessage(websocket.TextMessage, data)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) handleBroadcast() {
	for msg := range s.broadcast {
		s.clientsMu.Lock()
		for client := range s.clients {
			if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
				client.Close()
				delete(s.clients, client)
			}
		}
		s.clientsMu.Unlock()
	}
}

// pollSnapshots periodically broadcasts scheduler state so the dashboard
// stays live even without an explicit RecordEvent call.
func (s *Server) pollSnapshots() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.BroadcastStats()
		case <-s.stopPoll:
			return
		}
	}
}

// BroadcastStats sends the current snapshot to all connected clients.
func (s *Server) BroadcastStats() {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "stats",
		"data": s.currentStats(),
	})
	select {
	case s.broadcast <- data:
	default:
	}
}

// RecordEvent appends a scheduler event and broadcasts it live.
func (s *Server) RecordEvent(kind, description string) {
	s.mu.Lock()
	ev := Event{
		ID:          time.Now().Format("150405.000000000"),
		Timestamp:   time.Now(),
		Kind:        kind,
		Description: description,
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
	s.mu.Unlock()

	data, _ := json.Marshal(map[string]interface{}{
		"type": "event",
		"data": ev,
	})
	select {
	case s.broadcast <- data:
	default:
	}
}

// Start starts the web server.
func (s *Server) Start(addr string) error {
	log.Printf("[*] web dashboard starting at http://localhost%s\n", addr)
	return s.app.Listen(addr)
}

// Stop stops the web server and its background pollers.
func (s *Server) Stop() error {
	close(s.stopPoll)
	return s.app.Shutdown()
}
