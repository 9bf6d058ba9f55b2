// Package calibration collects the subject's attentive baseline before
// scoring starts.
package calibration

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-focus/pkg/expression"
	"github.com/teslashibe/go-focus/pkg/gaze"
)

// ReferenceEyeHeight is the eyelid opening treated as a fully open eye.
const ReferenceEyeHeight = 0.03

// Profile is the immutable baseline derived from calibration frames.
type Profile struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`

	GazeX    float64 `json:"gaze_x"`
	GazeY    float64 `json:"gaze_y"`
	StdGazeX float64 `json:"std_gaze_x"`
	StdGazeY float64 `json:"std_gaze_y"`

	EyeHeight float64 `json:"eye_height"`

	// GazeYWeight compresses vertical-gaze sensitivity for narrow-eyed
	// subjects. It is carried for diagnostics and never gates a decision.
	GazeYWeight float64 `json:"gaze_y_weight"`

	Expressions expression.Signals `json:"expressions"`
}

// NewProfile validates a baseline. Angles and ratios must be finite;
// deviations and eye height must also be non-negative.
func NewProfile(p Profile) (*Profile, error) {
	finite := map[string]float64{
		"yaw": p.Yaw, "pitch": p.Pitch, "roll": p.Roll,
		"gaze_x": p.GazeX, "gaze_y": p.GazeY,
	}
	for name, v := range finite {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s is %v", ErrInvalidProfile, name, v)
		}
	}
	nonNegative := map[string]float64{
		"std_gaze_x": p.StdGazeX, "std_gaze_y": p.StdGazeY,
		"eye_height": p.EyeHeight, "gaze_y_weight": p.GazeYWeight,
	}
	for name, v := range nonNegative {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: %s is %v", ErrInvalidProfile, name, v)
		}
	}

	exprs := make(expression.Signals, len(p.Expressions))
	for k, v := range p.Expressions {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("%w: expression %s is NaN", ErrInvalidProfile, k)
		}
		exprs[k] = v
	}
	p.Expressions = exprs
	return &p, nil
}

// GazeYWeight returns 0.5 + 0.5*min(eyeHeight/ReferenceEyeHeight, 1).
func GazeYWeight(eyeHeight float64) float64 {
	return 0.5 + 0.5*math.Min(eyeHeight/ReferenceEyeHeight, 1)
}

// GazeBaseline returns the part of the profile the gaze analyzer compares against.
func (p *Profile) GazeBaseline() gaze.Baseline {
	return gaze.Baseline{Yaw: p.Yaw, GazeX: p.GazeX, StdGazeX: p.StdGazeX}
}
