// Package session serves focus sessions over WebSocket: each connection gets
// its own engine, and finished sessions are persisted to a result store.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/teslashibe/go-focus/internal/log"
	"github.com/teslashibe/go-focus/pkg/engine"
	"github.com/teslashibe/go-focus/pkg/mode"
	"github.com/teslashibe/go-focus/pkg/protocol"
	"github.com/teslashibe/go-focus/pkg/score"
	"github.com/teslashibe/go-focus/pkg/store"
)

// Defaults applies when a start message leaves a setting out.
type Defaults struct {
	Profile  string        // engine config profile
	Cooldown time.Duration // zero keeps the profile's cooldown
}

// Hub manages focus-session WebSocket connections
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    store.Store
	defaults Defaults
	logger   *slog.Logger

	// Callbacks
	onEvent  func(sessionID string, ev protocol.EventData)
	onResult func(r *store.Result)

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	framesReceived   atomic.Uint64
	sessionsFinished atomic.Uint64
}

// NewHub creates a new session hub. A nil store disables persistence.
func NewHub(st store.Store, defaults Defaults) *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		store:    st,
		defaults: defaults,
		logger:   log.Component("session"),
	}
}

// OnEvent sets the callback for every emitted score event
func (h *Hub) OnEvent(callback func(sessionID string, ev protocol.EventData)) {
	h.mu.Lock()
	h.onEvent = callback
	h.mu.Unlock()
}

// OnResult sets the callback for every finished session
func (h *Hub) OnResult(callback func(r *store.Result)) {
	h.mu.Lock()
	h.onResult = callback
	h.mu.Unlock()
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws/session", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/session", websocket.New(h.handleSession))
	app.Get("/ws/session/:id", websocket.New(h.handleSession))
}

// handleSession handles one client connection
func (h *Hub) handleSession(c *websocket.Conn) {
	id := c.Params("id")
	if id == "" {
		id = uuid.New().String()
	}

	s := &Session{
		ID:        id,
		Conn:      c,
		Connected: time.Now(),
		lastSeen:  time.Now(),
		sent:      &h.messagesSent,
	}

	h.mu.Lock()
	if _, taken := h.sessions[id]; taken {
		h.mu.Unlock()
		h.logger.Warn("duplicate session id rejected", "session", id)
		h.sendError(s, fmt.Errorf("%w: %s", ErrSessionInUse, id))
		return
	}
	h.sessions[id] = s
	count := len(h.sessions)
	h.mu.Unlock()
	h.logger.Info("client connected", "session", id, "total", count)

	defer func() {
		if s.engine != nil && len(s.engine.History()) > 0 {
			// Keep what was measured even if the client never sent stop.
			if _, err := h.finish(s); err != nil {
				h.logger.Warn("save abandoned session", "session", id, "error", err)
			}
		}

		h.mu.Lock()
		delete(h.sessions, id)
		count := len(h.sessions)
		h.mu.Unlock()
		h.logger.Info("client disconnected", "session", id, "total", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			h.logger.Debug("read ended", "session", id, "error", err)
			return
		}

		s.touch()
		h.messagesReceived.Add(1)
		if err := h.handleMessage(s, data); err != nil {
			h.logger.Warn("message rejected", "session", id, "error", err)
			h.sendError(s, err)
		}
	}
}

// handleMessage processes an incoming client message
func (h *Hub) handleMessage(s *Session, data []byte) error {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		return err
	}

	switch msg.Type {
	case protocol.TypeStart:
		start, err := msg.GetStartData()
		if err != nil {
			return err
		}
		return h.start(s, *start)

	case protocol.TypeFrame:
		h.framesReceived.Add(1)
		if s.engine == nil {
			return ErrSessionNotStarted
		}
		obs, err := msg.GetFrame()
		if err != nil {
			return err
		}
		return h.step(s, s.engine.Step(obs))

	case protocol.TypePopup:
		if s.engine == nil {
			return ErrSessionNotStarted
		}
		popup, err := msg.GetPopupData()
		if err != nil {
			return err
		}
		cmds, err := s.engine.ResolvePopup(mode.PopupChoice(popup.Choice))
		if err != nil {
			return err
		}
		return h.sendCommands(s, cmds)

	case protocol.TypePlayer:
		if s.engine == nil {
			return ErrSessionNotStarted
		}
		player, err := msg.GetPlayerData()
		if err != nil {
			return err
		}
		s.engine.SetPlayerPaused(player.Paused)
		return nil

	case protocol.TypeStop:
		if s.engine == nil {
			return ErrSessionNotStarted
		}
		result, err := h.finish(s)
		if err != nil {
			return err
		}
		return s.reply(protocol.NewSummaryMessage(result.ID, result.Summary))

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			return err
		}
		return s.reply(protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli()))

	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedMessage, msg.Type)
	}
}

// start creates (or replaces) the session's engine
func (h *Hub) start(s *Session, start protocol.StartData) error {
	m, err := mode.ParseMode(start.Mode)
	if err != nil {
		return err
	}

	profile := start.Profile
	if profile == "" {
		profile = h.defaults.Profile
	}
	cfg, err := engine.ConfigForProfile(profile)
	if err != nil {
		return err
	}
	switch {
	case start.CooldownSeconds > 0:
		cfg.Cooldown = time.Duration(start.CooldownSeconds * float64(time.Second))
	case h.defaults.Cooldown > 0:
		cfg.Cooldown = h.defaults.Cooldown
	}

	eng, err := engine.New(cfg, m, engine.WithLogger(h.logger.With("session", s.ID)))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.engine = eng
	s.start = start
	s.profile = profile
	s.startedAt = time.Now()
	s.mode = string(m)
	s.calibrated = false
	s.lastAverage = 0
	s.mu.Unlock()

	h.logger.Info("session started",
		"session", s.ID,
		"mode", string(m),
		"profile", profile,
		"cooldown", cfg.Cooldown)
	return nil
}

// step forwards one engine event to the client and observers
func (h *Hub) step(s *Session, ev engine.Event) error {
	if ev.Skipped {
		return nil
	}
	s.record(ev)

	data := protocol.EventData{
		Session:     s.ID,
		Phase:       string(ev.Phase),
		Status:      ev.Status,
		Progress:    ev.Progress,
		Score:       ev.Score,
		Average:     ev.Average,
		Warnings:    score.Strings(ev.Warnings),
		FacePresent: ev.FacePresent,
	}
	if err := s.reply(protocol.NewEventMessage(data)); err != nil {
		return err
	}

	h.mu.RLock()
	onEvent := h.onEvent
	h.mu.RUnlock()
	if onEvent != nil {
		onEvent(s.ID, data)
	}

	return h.sendCommands(s, ev.Commands)
}

// finish persists the session result and resets the engine
func (h *Hub) finish(s *Session) (*store.Result, error) {
	eng := s.engine
	result := &store.Result{
		Participant: s.start.Participant,
		Video:       s.start.Video,
		Mode:        string(eng.Mode()),
		Profile:     s.profile,
		StartedAt:   s.startedAt.UTC(),
		Calibration: eng.Profile(),
		Summary:     eng.Summary(),
		History:     eng.History(),
	}

	if h.store != nil {
		if err := h.store.Save(result); err != nil {
			return nil, fmt.Errorf("save result: %w", err)
		}
	} else {
		result.ID = uuid.New().String()
	}

	eng.Reset()
	s.mu.Lock()
	s.engine = nil
	s.mu.Unlock()
	h.sessionsFinished.Add(1)

	h.logger.Info("session finished",
		"session", s.ID,
		"result", result.ID,
		"average_score", result.Summary.AverageScore,
		"samples", result.Summary.Samples)

	h.mu.RLock()
	onResult := h.onResult
	h.mu.RUnlock()
	if onResult != nil {
		onResult(result)
	}
	return result, nil
}

func (h *Hub) sendCommands(s *Session, cmds []mode.Command) error {
	if len(cmds) == 0 {
		return nil
	}
	return s.reply(protocol.NewCommandMessage(cmds))
}

func (h *Hub) sendError(s *Session, err error) {
	if sendErr := s.reply(protocol.NewErrorMessage(err)); sendErr != nil {
		h.logger.Debug("send error reply", "session", s.ID, "error", sendErr)
	}
}

// GetSession returns a session by ID
func (h *Hub) GetSession(id string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

// SessionCount returns the number of connected sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stats contains hub statistics
type Stats struct {
	SessionCount     int    `json:"session_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	FramesReceived   uint64 `json:"frames_received"`
	SessionsFinished uint64 `json:"sessions_finished"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		SessionCount:     h.SessionCount(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		FramesReceived:   h.framesReceived.Load(),
		SessionsFinished: h.sessionsFinished.Load(),
	}
}

// GetSessionInfos returns info about all connected sessions
func (h *Hub) GetSessionInfos() []Info {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.info())
	}
	return infos
}

// RegisterAPIRoutes registers API routes for live sessions
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	sessions := api.Group("/sessions")

	sessions.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sessions": h.GetSessionInfos(),
			"count":    h.SessionCount(),
		})
	})

	sessions.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})
}
