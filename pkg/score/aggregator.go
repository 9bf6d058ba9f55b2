// Package score combines per-frame focus conditions into a bounded score and
// smooths it over time.
package score

import (
	"math"
	"time"

	"github.com/teslashibe/go-focus/pkg/calibration"
	"github.com/teslashibe/go-focus/pkg/expression"
	"github.com/teslashibe/go-focus/pkg/face"
	"github.com/teslashibe/go-focus/pkg/gaze"
	"github.com/teslashibe/go-focus/pkg/geometry"
	"github.com/teslashibe/go-focus/pkg/movement"
)

// Thresholds for the discrete conditions.
type Thresholds struct {
	EyeBlink           float64       // per-eye blink intensity treated as closed
	EyesClosedDebounce time.Duration // how long both eyes must stay closed
	HeadYaw            float64       // degrees from baseline
	HeadPitch          float64       // degrees from baseline
	JawOpen            float64       // yawning
}

// DefaultThresholds returns the standard condition thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EyeBlink:           0.3,
		EyesClosedDebounce: time.Second,
		HeadYaw:            25,
		HeadPitch:          20,
		JawOpen:            0.4,
	}
}

// Result is one frame's score.
type Result struct {
	Score       float64
	Warnings    []Warning
	FacePresent bool
	GazeAway    bool
	Yawning     bool

	Pose    geometry.Euler
	Gaze    gaze.Diagnostics
	Signals expression.Signals
}

// Aggregator scores frames against a calibration profile. It owns the
// eyes-closed debounce timer and the movement buffer, so one aggregator
// serves one session.
type Aggregator struct {
	thresholds  Thresholds
	gaze        *gaze.Analyzer
	movement    *movement.Analyzer
	expressions *expression.Model

	eyesClosedSince time.Time
}

// NewAggregator creates an aggregator. A nil expression model disables
// expression penalties.
func NewAggregator(t Thresholds, g *gaze.Analyzer, m *movement.Analyzer, e *expression.Model) *Aggregator {
	return &Aggregator{thresholds: t, gaze: g, movement: m, expressions: e}
}

// Score evaluates one frame.
func (a *Aggregator) Score(obs face.Observation, profile *calibration.Profile, now time.Time) Result {
	lm, okLM := obs.PrimaryLandmarks()
	ex, okEx := obs.PrimaryExpressions()
	if !okLM || !okEx {
		a.eyesClosedSince = time.Time{}
		return Result{Score: 0, Warnings: []Warning{WarnFaceNotDetected}}
	}

	res := Result{FacePresent: true, Signals: expression.Extract(ex)}
	score := 100.0

	if a.eyesClosed(ex, now) {
		score -= PenaltyEyesClosed
		res.Warnings = append(res.Warnings, WarnEyesClosed)
	}

	yaw := profile.Yaw
	if tf, ok := obs.PrimaryTransform(); ok {
		res.Pose = tf.ToEuler()
		yaw = res.Pose.Yaw
		if math.Abs(res.Pose.Yaw-profile.Yaw) > a.thresholds.HeadYaw ||
			math.Abs(res.Pose.Pitch-profile.Pitch) > a.thresholds.HeadPitch {
			score -= PenaltyHeadAway
			res.Warnings = append(res.Warnings, WarnHeadAway)
		}
	} else {
		res.Pose = geometry.Euler{Yaw: profile.Yaw, Pitch: profile.Pitch, Roll: profile.Roll}
	}

	res.Gaze = a.gaze.Evaluate(gaze.Compute(lm), yaw, profile.GazeBaseline(), profile.GazeY)
	if res.Gaze.Away {
		res.GazeAway = true
		score -= PenaltyGazeAway
		res.Warnings = append(res.Warnings, WarnGazeAway)
	}

	if res.Signals[expression.JawOpen] > a.thresholds.JawOpen {
		res.Yawning = true
		score -= PenaltyYawning
		res.Warnings = append(res.Warnings, WarnYawning)
	}

	if a.movement.Observe(lm) {
		score -= PenaltyRestless
		res.Warnings = append(res.Warnings, WarnRestless)
	}

	if a.expressions != nil {
		er := a.expressions.Evaluate(res.Signals, profile.Expressions)
		score -= er.Penalty
		for _, w := range er.Warnings {
			res.Warnings = append(res.Warnings, Warning(w))
		}
	}

	res.Score = geometry.Clamp(score, 0, 100)
	return res
}

// eyesClosed tracks how long both eyes have been closed. The start time is
// cleared the moment either eye opens.
func (a *Aggregator) eyesClosed(ex face.Expressions, now time.Time) bool {
	closed := ex.Get("eyeBlinkLeft") > a.thresholds.EyeBlink &&
		ex.Get("eyeBlinkRight") > a.thresholds.EyeBlink
	if !closed {
		a.eyesClosedSince = time.Time{}
		return false
	}
	if a.eyesClosedSince.IsZero() {
		a.eyesClosedSince = now
	}
	return now.Sub(a.eyesClosedSince) >= a.thresholds.EyesClosedDebounce
}

// ClearEyesClosed restarts the eyes-closed debounce, so the next closed-eye
// frame starts a fresh interval.
func (a *Aggregator) ClearEyesClosed() {
	a.eyesClosedSince = time.Time{}
}

// Reset clears the debounce timer and movement buffer.
func (a *Aggregator) Reset() {
	a.eyesClosedSince = time.Time{}
	a.movement.Reset()
}
