// Package mode turns the smoothed focus score into playback commands. Each
// session mode is a separate controller with its own runtime state.
package mode

import (
	"fmt"
	"strings"
	"time"
)

// Mode is a session mode. It is fixed for the lifetime of a session.
type Mode string

const (
	Normal       Mode = "normal"
	ScoreOnly    Mode = "score_only"
	NonIntrusive Mode = "non_intrusive"
	Intrusive    Mode = "intrusive"
	Strict       Mode = "strict"
	NoControl    Mode = "no_control"
)

// Modes lists every supported mode.
var Modes = []Mode{Normal, ScoreOnly, NonIntrusive, Intrusive, Strict, NoControl}

// ParseMode accepts mode names case-insensitively with '-', '_' or no separator.
func ParseMode(s string) (Mode, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for _, m := range Modes {
		if strings.ReplaceAll(string(m), "_", "") == key {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// CommandType names a playback or UI command.
type CommandType string

const (
	CmdPause           CommandType = "pause"
	CmdResume          CommandType = "resume"
	CmdSetVolume       CommandType = "set_volume"
	CmdShowPopup       CommandType = "show_popup"
	CmdHidePopup       CommandType = "hide_popup"
	CmdPlayWarning     CommandType = "play_warning_sound"
	CmdShowOverlay     CommandType = "show_overlay"
	CmdHideOverlay     CommandType = "hide_overlay"
	CmdDisableControls CommandType = "disable_controls"
	CmdEnableControls  CommandType = "enable_controls"
)

// Command is one instruction to the player or UI.
type Command struct {
	Type   CommandType `json:"type"`
	Volume float64     `json:"volume,omitempty"`
}

func cmds(types ...CommandType) []Command {
	out := make([]Command, len(types))
	for i, t := range types {
		out[i] = Command{Type: t}
	}
	return out
}

// PopupChoice is the subject's answer to the unfocus popup.
type PopupChoice string

const (
	ChoicePause    PopupChoice = "pause"
	ChoiceContinue PopupChoice = "continue"
)

// ParsePopupChoice validates a popup answer.
func ParsePopupChoice(s string) (PopupChoice, error) {
	switch c := PopupChoice(strings.ToLower(s)); c {
	case ChoicePause, ChoiceContinue:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChoice, s)
	}
}

// Input is the per-frame signal every controller reacts to.
type Input struct {
	Average     float64 // rolling-average score
	FacePresent bool
	Yawning     bool
	GazeAway    bool
}

// Config holds controller tuning.
type Config struct {
	UnfocusThreshold float64
	Cooldown         time.Duration
	Recovery         time.Duration
	BaseVolume       float64
	VolumeBoost      float64
}

// DefaultConfig returns the standard controller tuning.
func DefaultConfig() Config {
	return Config{
		UnfocusThreshold: 75,
		Cooldown:         30 * time.Second,
		Recovery:         2 * time.Second,
		BaseVolume:       0.7,
		VolumeBoost:      0.3,
	}
}

func (c Config) unfocused(in Input) bool {
	return !in.FacePresent || in.Average < c.UnfocusThreshold
}

// Playback phases reported in RuntimeState.
const (
	PhasePlaying    = "playing"
	PhasePaused     = "paused"
	PhaseRecovering = "recovering"
)

// RuntimeState is a snapshot of a controller's mutable state.
type RuntimeState struct {
	Mode            Mode      `json:"mode"`
	Phase           string    `json:"phase"`
	PopupVisible    bool      `json:"popup_visible"`
	VolumeBoosted   bool      `json:"volume_boosted"`
	LastPopupAt     time.Time `json:"last_popup_at,omitzero"`
	LastPauseAt     time.Time `json:"last_pause_at,omitzero"`
	RecoveringSince time.Time `json:"recovering_since,omitzero"`
}

// Controller reacts to the smoothed score for one session mode.
type Controller interface {
	Mode() Mode

	// Update consumes one scored frame and returns the commands to issue.
	Update(in Input, now time.Time) []Command

	// ResolvePopup applies the subject's popup answer.
	ResolvePopup(choice PopupChoice, now time.Time) ([]Command, error)

	// NeedsFrames reports whether the controller must keep receiving scores
	// while the player is paused (to close a popup or resume after recovery).
	NeedsFrames() bool

	State() RuntimeState
	Reset()
}

// New creates the controller for a mode.
func New(m Mode, cfg Config) (Controller, error) {
	switch m {
	case Normal, ScoreOnly:
		return &passive{mode: m}, nil
	case NonIntrusive:
		return &nonIntrusive{cfg: cfg}, nil
	case Intrusive:
		return &intrusive{cfg: cfg}, nil
	case Strict:
		return &legacy{mode: m, cfg: cfg, pauseOnAbsence: true}, nil
	case NoControl:
		return &legacy{mode: m, cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
}
