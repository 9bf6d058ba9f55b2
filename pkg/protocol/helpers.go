package protocol

import (
	"time"

	"github.com/teslashibe/go-focus/pkg/face"
	"github.com/teslashibe/go-focus/pkg/mode"
	"github.com/teslashibe/go-focus/pkg/score"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewStartMessage creates a session start message
func NewStartMessage(start StartData) (*Message, error) {
	return NewMessage(TypeStart, start)
}

// NewFrameMessage creates a frame message from a tracker observation
func NewFrameMessage(obs face.Observation) (*Message, error) {
	return NewMessage(TypeFrame, obs)
}

// NewPopupMessage creates a popup answer message
func NewPopupMessage(choice mode.PopupChoice) (*Message, error) {
	return NewMessage(TypePopup, PopupData{Choice: string(choice)})
}

// NewPlayerMessage creates a player state message
func NewPlayerMessage(paused bool) (*Message, error) {
	return NewMessage(TypePlayer, PlayerData{Paused: paused})
}

// NewStopMessage creates a stop message
func NewStopMessage() (*Message, error) {
	return NewMessage(TypeStop, nil)
}

// NewEventMessage creates a score event message
func NewEventMessage(ev EventData) (*Message, error) {
	return NewMessage(TypeEvent, ev)
}

// NewCommandMessage creates a command message
func NewCommandMessage(cmds []mode.Command) (*Message, error) {
	return NewMessage(TypeCommand, CommandData{Commands: cmds})
}

// NewSummaryMessage creates a summary message
func NewSummaryMessage(id string, summary score.Summary) (*Message, error) {
	return NewMessage(TypeSummary, SummaryData{ID: id, Summary: summary})
}

// NewErrorMessage creates an error message
func NewErrorMessage(err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Message: err.Error()})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id, Timestamp: time.Now().UnixMilli()})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetStartData extracts and validates start data from a message
func (m *Message) GetStartData() (*StartData, error) {
	var data StartData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetFrame extracts the tracker observation from a message
func (m *Message) GetFrame() (face.Observation, error) {
	var obs face.Observation
	if err := m.ParseData(&obs); err != nil {
		return face.Observation{}, err
	}
	return obs, nil
}

// GetPopupData extracts and validates a popup answer from a message
func (m *Message) GetPopupData() (*PopupData, error) {
	var data PopupData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPlayerData extracts player state from a message
func (m *Message) GetPlayerData() (*PlayerData, error) {
	var data PlayerData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetEventData extracts a score event from a message
func (m *Message) GetEventData() (*EventData, error) {
	var data EventData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetCommandData extracts commands from a message
func (m *Message) GetCommandData() (*CommandData, error) {
	var data CommandData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSummaryData extracts a session summary from a message
func (m *Message) GetSummaryData() (*SummaryData, error) {
	var data SummaryData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts an error from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
