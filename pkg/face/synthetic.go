package face

import "github.com/teslashibe/go-focus/pkg/geometry"

// Synthetic describes a simple frontal face used to fabricate landmark sets
// for replays and tests.
type Synthetic struct {
	GazeX     float64 // horizontal iris ratio within each eye (0=outer/inner origin, 1=other corner)
	GazeY     float64 // vertical iris offset from the eye midpoint, in eye heights
	EyeHeight float64 // eyelid opening in normalized units
	NoseX     float64
	NoseY     float64
}

// DefaultSynthetic is an attentive subject looking straight ahead.
func DefaultSynthetic() Synthetic {
	return Synthetic{GazeX: 0.5, GazeY: 0, EyeHeight: 0.03, NoseX: 0.5, NoseY: 0.5}
}

// Landmarks builds a full landmark set for the description.
func (s Synthetic) Landmarks() Landmarks {
	pts := make(Landmarks, NumLandmarks)
	for i := range pts {
		pts[i] = geometry.Point{X: s.NoseX, Y: s.NoseY}
	}

	const eyeWidth = 0.06
	eyeY := s.NoseY - 0.1

	// Left eye spans outer(33) -> inner(133), ratio origin is the outer corner.
	leftOuter := s.NoseX - 0.12
	pts[LeftEyeOuter] = geometry.Point{X: leftOuter, Y: eyeY}
	pts[LeftEyeInner] = geometry.Point{X: leftOuter + eyeWidth, Y: eyeY}
	pts[LeftEyeTop] = geometry.Point{X: leftOuter + eyeWidth/2, Y: eyeY - s.EyeHeight/2}
	pts[LeftEyeBottom] = geometry.Point{X: leftOuter + eyeWidth/2, Y: eyeY + s.EyeHeight/2}

	// Right eye spans inner(362) -> outer(263), ratio origin is the inner corner.
	rightInner := s.NoseX + 0.06
	pts[RightEyeInner] = geometry.Point{X: rightInner, Y: eyeY}
	pts[RightEyeOuter] = geometry.Point{X: rightInner + eyeWidth, Y: eyeY}
	pts[RightEyeTop] = geometry.Point{X: rightInner + eyeWidth/2, Y: eyeY - s.EyeHeight/2}
	pts[RightEyeBottom] = geometry.Point{X: rightInner + eyeWidth/2, Y: eyeY + s.EyeHeight/2}

	irisY := eyeY + s.GazeY*s.EyeHeight
	for _, idx := range LeftIris {
		pts[idx] = geometry.Point{X: leftOuter + s.GazeX*eyeWidth, Y: irisY}
	}
	for _, idx := range RightIris {
		pts[idx] = geometry.Point{X: rightInner + s.GazeX*eyeWidth, Y: irisY}
	}

	pts[NoseTip] = geometry.Point{X: s.NoseX, Y: s.NoseY}
	return pts
}

// Observation wraps the synthetic face into a complete frame.
func (s Synthetic) Observation(ts int64, pose geometry.Matrix, expr Expressions) Observation {
	if expr == nil {
		expr = Expressions{"_neutral": 0}
	}
	return Observation{
		Timestamp:   ts,
		Landmarks:   []Landmarks{s.Landmarks()},
		Expressions: []Expressions{expr},
		Transforms:  []geometry.Matrix{pose},
	}
}
