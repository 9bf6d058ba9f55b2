// Package protocol defines the WebSocket message types exchanged between a
// focus-session client (the page running the face tracker and video player)
// and the focus server.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teslashibe/go-focus/pkg/mode"
	"github.com/teslashibe/go-focus/pkg/score"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → Server messages
	TypeStart  MessageType = "start"  // Begin a session
	TypeFrame  MessageType = "frame"  // One face-tracker observation
	TypePopup  MessageType = "popup"  // Popup answer
	TypePlayer MessageType = "player" // Player paused/playing
	TypeStop   MessageType = "stop"   // End the session

	// Server → Client messages
	TypeEvent   MessageType = "event"   // Per-frame score event
	TypeCommand MessageType = "command" // Player/UI commands
	TypeSummary MessageType = "summary" // Session summary on stop
	TypeError   MessageType = "error"   // Request could not be handled

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", m.Type, err)
	}
	return nil
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, ErrMissingType
	}
	return &msg, nil
}

var validate = validator.New()

// =============================================================================
// Client → Server Message Types
// =============================================================================

// StartData opens a session. Mode is required; the rest falls back to
// server defaults.
type StartData struct {
	Mode            string  `json:"mode" validate:"required"`
	Profile         string  `json:"profile,omitempty" validate:"omitempty,oneof=default legacy"`
	CooldownSeconds float64 `json:"cooldown_seconds,omitempty" validate:"gte=0,lte=3600"`
	Participant     string  `json:"participant,omitempty" validate:"max=128"`
	Video           string  `json:"video,omitempty" validate:"max=256"`
}

// Validate checks field constraints.
func (s StartData) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}

// PopupData answers an open popup.
type PopupData struct {
	Choice string `json:"choice" validate:"required,oneof=pause continue"`
}

// Validate checks field constraints.
func (p PopupData) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}

// PlayerData reports the client player's state.
type PlayerData struct {
	Paused bool `json:"paused"`
}

// =============================================================================
// Server → Client Message Types
// =============================================================================

// EventData is one scored (or calibrating) frame.
type EventData struct {
	Session     string   `json:"session,omitempty"`
	Phase       string   `json:"phase"`
	Status      string   `json:"status,omitempty"`
	Progress    int      `json:"progress"`
	Score       float64  `json:"score"`
	Average     float64  `json:"average"`
	Warnings    []string `json:"warnings,omitempty"`
	FacePresent bool     `json:"face_present"`
}

// CommandData carries player/UI commands.
type CommandData struct {
	Commands []mode.Command `json:"commands"`
}

// SummaryData reports a finished session.
type SummaryData struct {
	ID      string        `json:"id"`
	Summary score.Summary `json:"summary"`
}

// ErrorData describes a rejected request.
type ErrorData struct {
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
