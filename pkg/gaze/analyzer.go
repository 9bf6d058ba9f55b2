package gaze

import "math"

// Baseline is the calibrated resting gaze the analyzer compares against.
type Baseline struct {
	Yaw      float64 // degrees
	GazeX    float64
	StdGazeX float64
}

// Analyzer classifies gaze-away with head-yaw compensation.
type Analyzer struct {
	// Threshold is the fixed floor on the allowed horizontal deviation.
	Threshold float64

	// YawCompensation is the expected horizontal ratio shift per degree of
	// yaw away from baseline. Turning right (positive yaw) moves the iris
	// left to keep looking at the screen. Zero disables compensation.
	YawCompensation float64
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(threshold, yawCompensation float64) *Analyzer {
	return &Analyzer{Threshold: threshold, YawCompensation: yawCompensation}
}

// Diagnostics explains one gaze-away decision.
type Diagnostics struct {
	ExpectedX float64 `json:"expected_x"`
	DiffX     float64 `json:"diff_x"`
	LimitX    float64 `json:"limit_x"`
	DiffY     float64 `json:"diff_y"`
	Away      bool    `json:"away"`
}

// Evaluate compares the ratio against the yaw-compensated baseline.
// Only the horizontal axis decides; the vertical difference is reported for
// diagnostics only.
func (a *Analyzer) Evaluate(r Ratio, yaw float64, base Baseline, baseGazeY float64) Diagnostics {
	yawFromBase := yaw - base.Yaw
	expectedX := base.GazeX - yawFromBase*a.YawCompensation

	diffX := math.Abs(r.AvgX - expectedX)
	limitX := math.Max(a.Threshold, 3*base.StdGazeX)

	return Diagnostics{
		ExpectedX: expectedX,
		DiffX:     diffX,
		LimitX:    limitX,
		DiffY:     math.Abs(r.AvgY - baseGazeY),
		Away:      diffX > limitX,
	}
}

// IsAway reports whether the subject's gaze has left the screen.
func (a *Analyzer) IsAway(r Ratio, yaw float64, base Baseline) bool {
	return a.Evaluate(r, yaw, base, 0).Away
}
