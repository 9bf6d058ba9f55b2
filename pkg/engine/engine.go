// Package engine runs one focus session: calibration, per-frame scoring and
// mode control, driven one frame at a time by the host.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-focus/internal/log"
	"github.com/teslashibe/go-focus/internal/timeutil"
	"github.com/teslashibe/go-focus/pkg/calibration"
	"github.com/teslashibe/go-focus/pkg/expression"
	"github.com/teslashibe/go-focus/pkg/face"
	"github.com/teslashibe/go-focus/pkg/gaze"
	"github.com/teslashibe/go-focus/pkg/geometry"
	"github.com/teslashibe/go-focus/pkg/mode"
	"github.com/teslashibe/go-focus/pkg/movement"
	"github.com/teslashibe/go-focus/pkg/score"
)

// Phase is the engine's stage within a session.
type Phase string

const (
	PhaseCalibrating Phase = "calibrating"
	PhaseScoring     Phase = "scoring"
	PhaseHeld        Phase = "held" // player paused, scoring suspended
)

// StatusPlayerPaused is reported while scoring is held.
const StatusPlayerPaused = "player paused"

// Event is the outcome of one Step.
type Event struct {
	Phase       Phase           `json:"phase"`
	Status      string          `json:"status,omitempty"`
	Progress    int             `json:"progress"`
	Score       float64         `json:"score"`
	Average     float64         `json:"average"`
	Warnings    []score.Warning `json:"warnings,omitempty"`
	Commands    []mode.Command  `json:"commands,omitempty"`
	FacePresent bool            `json:"face_present"`

	// Skipped is set when the frame repeated the previous timestamp.
	Skipped bool `json:"-"`

	Pose geometry.Euler   `json:"-"`
	Gaze gaze.Diagnostics `json:"-"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the clock used for every timer.
func WithClock(c timeutil.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine owns all mutable state of one session. It is not safe for
// concurrent use; the host calls Step from a single goroutine.
type Engine struct {
	cfg    Config
	clock  timeutil.Clock
	logger *slog.Logger

	collector  *calibration.Collector
	aggregator *score.Aggregator
	window     *score.Window
	history    *score.History
	controller mode.Controller

	lastTS       int64
	hasTS        bool
	playerPaused bool
}

// New creates an engine for a session in the given mode.
func New(cfg Config, m mode.Mode, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	controller, err := mode.New(m, mode.Config{
		UnfocusThreshold: cfg.UnfocusThreshold,
		Cooldown:         cfg.Cooldown,
		Recovery:         cfg.RecoveryDuration,
		BaseVolume:       cfg.BaseVolume,
		VolumeBoost:      cfg.VolumeBoost,
	})
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}

	var exprModel *expression.Model
	if cfg.ExpressionPenalties {
		exprModel = expression.DefaultModel()
	}

	e := &Engine{
		cfg:       cfg,
		clock:     timeutil.RealClock{},
		logger:    log.Component("engine"),
		collector: calibration.NewCollector(cfg.CalibrationFrames),
		aggregator: score.NewAggregator(
			score.Thresholds{
				EyeBlink:           cfg.EyeBlinkThreshold,
				EyesClosedDebounce: cfg.EyesClosedDebounce,
				HeadYaw:            cfg.HeadYawLimit,
				HeadPitch:          cfg.HeadPitchLimit,
				JawOpen:            cfg.JawOpenThreshold,
			},
			gaze.NewAnalyzer(cfg.GazeAwayThreshold, cfg.YawCompensation),
			movement.NewAnalyzer(cfg.MovementWindow, cfg.MovementThreshold),
			exprModel,
		),
		window:     score.NewWindow(cfg.RollingWindow),
		history:    score.NewHistory(cfg.ReportInterval),
		controller: controller,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("mode", string(m))
	return e, nil
}

// Step consumes one frame.
func (e *Engine) Step(obs face.Observation) Event {
	if e.hasTS && obs.Timestamp == e.lastTS {
		return Event{Phase: e.phase(), Skipped: true}
	}
	e.lastTS = obs.Timestamp
	e.hasTS = true

	if !e.collector.Done() {
		return e.calibrate(obs)
	}

	now := e.clock.Now()
	if e.playerPaused && !e.controller.NeedsFrames() {
		return Event{
			Phase:       PhaseHeld,
			Status:      StatusPlayerPaused,
			Progress:    100,
			Average:     e.window.Average(now),
			FacePresent: obs.FacePresent(),
		}
	}

	res := e.aggregator.Score(obs, e.collector.Profile(), now)
	e.window.Push(res.Score, now)
	avg := e.window.Average(now)
	e.history.Record(now, res.Score, obs.MediaTime, res.Signals)

	cmds := e.controller.Update(mode.Input{
		Average:     avg,
		FacePresent: res.FacePresent,
		Yawning:     res.Yawning,
		GazeAway:    res.GazeAway,
	}, now)
	if len(cmds) > 0 {
		e.logger.Info("mode commands",
			"commands", commandNames(cmds),
			"average", avg,
			"phase", e.controller.State().Phase)
	}
	e.logger.Debug("frame scored",
		"ts", obs.Timestamp,
		"score", res.Score,
		"average", avg,
		"warnings", res.Warnings,
		"gaze_diff_x", res.Gaze.DiffX)

	return Event{
		Phase:       PhaseScoring,
		Progress:    100,
		Score:       res.Score,
		Average:     avg,
		Warnings:    res.Warnings,
		Commands:    cmds,
		FacePresent: res.FacePresent,
		Pose:        res.Pose,
		Gaze:        res.Gaze,
	}
}

func (e *Engine) calibrate(obs face.Observation) Event {
	profile, progress, err := e.collector.Observe(obs)
	if err != nil {
		e.logger.Warn("calibration restarted", "error", err)
	}
	if profile != nil {
		e.logger.Info("calibration complete",
			"yaw", profile.Yaw,
			"pitch", profile.Pitch,
			"gaze_x", profile.GazeX,
			"std_gaze_x", profile.StdGazeX,
			"gaze_y_weight", profile.GazeYWeight)
	}
	return Event{
		Phase:       PhaseCalibrating,
		Status:      progress.Status,
		Progress:    progress.Percent,
		FacePresent: obs.FacePresent(),
	}
}

func (e *Engine) phase() Phase {
	switch {
	case !e.collector.Done():
		return PhaseCalibrating
	case e.playerPaused && !e.controller.NeedsFrames():
		return PhaseHeld
	default:
		return PhaseScoring
	}
}

// SetPlayerPaused records whether the host's player is paused. While paused,
// frames are scored only if the mode controller needs them. Pausing restarts
// the eyes-closed debounce so held time never counts toward it.
func (e *Engine) SetPlayerPaused(paused bool) {
	if paused {
		e.aggregator.ClearEyesClosed()
	}
	e.playerPaused = paused
}

// ResolvePopup applies the subject's answer to an open popup.
func (e *Engine) ResolvePopup(choice mode.PopupChoice) ([]mode.Command, error) {
	cmds, err := e.controller.ResolvePopup(choice, e.clock.Now())
	if err != nil {
		return nil, err
	}
	e.logger.Info("popup resolved", "choice", string(choice))
	return cmds, nil
}

// Reset clears calibration, rolling windows, history and mode state so the
// next frame starts a fresh session.
func (e *Engine) Reset() {
	e.collector.Reset()
	e.aggregator.Reset()
	e.window.Reset()
	e.history.Reset()
	e.controller.Reset()
	e.hasTS = false
	e.lastTS = 0
	e.playerPaused = false
	e.logger.Info("session reset")
}

// Mode returns the session mode.
func (e *Engine) Mode() mode.Mode { return e.controller.Mode() }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Calibrated reports whether a baseline profile exists.
func (e *Engine) Calibrated() bool { return e.collector.Done() }

// Profile returns the baseline, or nil before calibration completes.
func (e *Engine) Profile() *calibration.Profile { return e.collector.Profile() }

// State returns the mode controller's runtime state.
func (e *Engine) State() mode.RuntimeState { return e.controller.State() }

// History returns the per-interval score history.
func (e *Engine) History() []score.HistorySample { return e.history.Samples() }

// Summary computes the session summary from the history so far.
func (e *Engine) Summary() score.Summary { return score.Summarize(e.history.Samples()) }

func commandNames(cmds []mode.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = string(c.Type)
	}
	return out
}
