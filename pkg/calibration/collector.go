package calibration

import (
	"fmt"

	"github.com/teslashibe/go-focus/pkg/expression"
	"github.com/teslashibe/go-focus/pkg/face"
	"github.com/teslashibe/go-focus/pkg/gaze"
	"github.com/teslashibe/go-focus/pkg/geometry"
)

// DefaultTarget is the number of valid frames calibration needs.
const DefaultTarget = 30

// Status messages reported while collecting.
const (
	StatusShowFace   = "show your face"
	StatusCollecting = "calibrating"
	StatusDone       = "calibrated"
)

type sample struct {
	pose  geometry.Euler
	ratio gaze.Ratio
	expr  expression.Signals
}

// Progress reports the collector's state after a frame.
type Progress struct {
	Percent int    `json:"percent"`
	Status  string `json:"status"`
}

// Collector accumulates attentive frames until it can derive a Profile.
// It is not safe for concurrent use.
type Collector struct {
	target  int
	samples []sample
	profile *Profile
}

// NewCollector creates a collector that completes after target valid frames.
func NewCollector(target int) *Collector {
	if target <= 0 {
		target = DefaultTarget
	}
	return &Collector{target: target, samples: make([]sample, 0, target)}
}

// Target returns the configured frame count.
func (c *Collector) Target() int {
	return c.target
}

// Profile returns the completed profile, or nil while collecting.
func (c *Collector) Profile() *Profile {
	return c.profile
}

// Done reports whether calibration has completed.
func (c *Collector) Done() bool {
	return c.profile != nil
}

// Observe adds a frame. Frames lacking pose, landmarks or expressions are
// ignored. The returned profile is non-nil once the target is reached; after
// that further frames are ignored and the same profile is returned.
func (c *Collector) Observe(obs face.Observation) (*Profile, Progress, error) {
	if c.profile != nil {
		return c.profile, Progress{Percent: 100, Status: StatusDone}, nil
	}

	lm, okLM := obs.PrimaryLandmarks()
	ex, okEx := obs.PrimaryExpressions()
	tf, okTf := obs.PrimaryTransform()
	if !okLM || !okEx || !okTf {
		return nil, Progress{Percent: c.percent(), Status: StatusShowFace}, nil
	}

	c.samples = append(c.samples, sample{
		pose:  tf.ToEuler(),
		ratio: gaze.Compute(lm),
		expr:  expression.Extract(ex),
	})

	if len(c.samples) < c.target {
		return nil, Progress{Percent: c.percent(), Status: StatusCollecting}, nil
	}

	profile, err := c.finish()
	if err != nil {
		// Garbage geometry: start over rather than calibrate on it.
		c.samples = c.samples[:0]
		return nil, Progress{Percent: 0, Status: StatusShowFace}, err
	}
	c.profile = profile
	return profile, Progress{Percent: 100, Status: StatusDone}, nil
}

// Reset clears the buffer and any completed profile.
func (c *Collector) Reset() {
	c.samples = c.samples[:0]
	c.profile = nil
}

func (c *Collector) percent() int {
	return len(c.samples) * 100 / c.target
}

func (c *Collector) finish() (*Profile, error) {
	n := len(c.samples)
	yaws := make([]float64, n)
	pitches := make([]float64, n)
	rolls := make([]float64, n)
	gx := make([]float64, n)
	gy := make([]float64, n)
	heights := make([]float64, n)
	exprs := make([]expression.Signals, n)

	for i, s := range c.samples {
		yaws[i] = s.pose.Yaw
		pitches[i] = s.pose.Pitch
		rolls[i] = s.pose.Roll
		gx[i] = s.ratio.AvgX
		gy[i] = s.ratio.AvgY
		heights[i] = s.ratio.AvgEyeHeight
		exprs[i] = s.expr
	}

	meanX, stdX := geometry.MeanStd(gx)
	meanY, stdY := geometry.MeanStd(gy)
	eyeHeight := geometry.Mean(heights)

	p, err := NewProfile(Profile{
		Yaw:         geometry.Mean(yaws),
		Pitch:       geometry.Mean(pitches),
		Roll:        geometry.Mean(rolls),
		GazeX:       meanX,
		GazeY:       meanY,
		StdGazeX:    stdX,
		StdGazeY:    stdY,
		EyeHeight:   eyeHeight,
		GazeYWeight: GazeYWeight(eyeHeight),
		Expressions: expression.Mean(exprs),
	})
	if err != nil {
		return nil, fmt.Errorf("derive profile from %d frames: %w", n, err)
	}
	return p, nil
}
