package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/teslashibe/go-focus/pkg/engine"
	"github.com/teslashibe/go-focus/pkg/protocol"
)

// Session is one connected client and its focus engine. The engine is only
// used from the connection's read loop; it is assigned under mu alongside
// the start metadata that the REST handlers read.
type Session struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time

	sent *atomic.Uint64

	mu          sync.Mutex // guards the fields below and writes to Conn
	engine      *engine.Engine
	start       protocol.StartData
	profile     string
	startedAt   time.Time
	lastSeen    time.Time
	mode        string
	calibrated  bool
	lastAverage float64
	frames      uint64
}

// Send writes a message to the client
func (s *Session) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Conn.WriteMessage(websocket.TextMessage, data)
}

// reply sends a freshly built message, passing through construction errors
func (s *Session) reply(msg *protocol.Message, err error) error {
	if err != nil {
		return err
	}
	if s.sent != nil {
		s.sent.Add(1)
	}
	return s.Send(msg)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) record(ev engine.Event) {
	s.mu.Lock()
	s.frames++
	s.calibrated = s.engine.Calibrated()
	if ev.Phase == engine.PhaseScoring {
		s.lastAverage = ev.Average
	}
	s.mu.Unlock()
}

// Info contains info about a connected session
type Info struct {
	ID          string    `json:"id"`
	Mode        string    `json:"mode,omitempty"`
	Participant string    `json:"participant,omitempty"`
	Video       string    `json:"video,omitempty"`
	Calibrated  bool      `json:"calibrated"`
	Average     float64   `json:"average"`
	Frames      uint64    `json:"frames"`
	Connected   time.Time `json:"connected"`
	LastSeen    time.Time `json:"last_seen"`
}

func (s *Session) info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:          s.ID,
		Mode:        s.mode,
		Participant: s.start.Participant,
		Video:       s.start.Video,
		Calibrated:  s.calibrated,
		Average:     s.lastAverage,
		Frames:      s.frames,
		Connected:   s.Connected,
		LastSeen:    s.lastSeen,
	}
}
