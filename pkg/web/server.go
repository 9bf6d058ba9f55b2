// Package web serves the focus session endpoint, the result API and a live
// event feed for dashboards.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-focus/internal/log"
	"github.com/teslashibe/go-focus/pkg/hub"
	"github.com/teslashibe/go-focus/pkg/protocol"
	"github.com/teslashibe/go-focus/pkg/session"
	"github.com/teslashibe/go-focus/pkg/store"
)

// LiveEvent is what dashboards receive on /ws/events.
type LiveEvent struct {
	Kind    string              `json:"kind"` // "event" or "result"
	Session string              `json:"session,omitempty"`
	Event   *protocol.EventData `json:"event,omitempty"`
	Result  *ResultInfo         `json:"result,omitempty"`
}

// Server is the focus HTTP server
type Server struct {
	app      *fiber.App
	port     string
	store    store.Store
	sessions *session.Hub
	events   *hub.Hub
	logger   *slog.Logger
	started  time.Time
}

// NewServer creates the server and wires the session hub into the live feed.
func NewServer(port string, st store.Store, sessions *session.Hub) *Server {
	s := &Server{
		port:     port,
		store:    st,
		sessions: sessions,
		events:   hub.New("events"),
		logger:   log.Component("web"),
		started:  time.Now(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Focus",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		app.Use(logger.New())
	}

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/results", s.handleListResults)
	api.Get("/results/:id", s.handleGetResult)
	api.Delete("/results/:id", s.handleDeleteResult)
	api.Get("/results/:id/chart", s.handleResultChart)
	sessions.RegisterAPIRoutes(api)

	// Live event feed; ?session=<id> follows one session
	app.Use("/ws/events", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(func(c *websocket.Conn) {
		hub.NewClient(s.events, c, c.Query("session")).Run()
	}))

	// Session endpoint
	sessions.RegisterRoutes(app)

	sessions.OnEvent(func(id string, ev protocol.EventData) {
		s.publish(LiveEvent{Kind: "event", Session: id, Event: &ev})
	})
	sessions.OnResult(func(r *store.Result) {
		info := newResultInfo(r)
		s.publish(LiveEvent{Kind: "result", Result: &info})
	})

	s.app = app
	return s
}

// App exposes the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Events returns the live event hub
func (s *Server) Events() *hub.Hub {
	return s.events
}

func (s *Server) publish(ev LiveEvent) {
	if err := s.events.Publish(ev.Session, ev); err != nil {
		s.logger.Warn("publish live event", "error", err)
	}
}

// Start runs the live feed and listens until the app is shut down.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("listening", "addr", "http://localhost:"+s.port)
	go s.events.Run(ctx)
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
