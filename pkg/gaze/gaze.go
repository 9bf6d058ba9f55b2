// Package gaze estimates where the subject is looking from iris and eye-corner
// landmarks and classifies gaze-away against a calibrated baseline.
package gaze

import (
	"math"

	"github.com/teslashibe/go-focus/pkg/face"
	"github.com/teslashibe/go-focus/pkg/geometry"
)

// Ratio is the normalized iris position within each eye.
type Ratio struct {
	LeftX  float64 `json:"left_x"`
	RightX float64 `json:"right_x"`
	AvgX   float64 `json:"avg_x"`

	LeftY  float64 `json:"left_y"`
	RightY float64 `json:"right_y"`
	AvgY   float64 `json:"avg_y"`

	// AvgEyeHeight is the mean eyelid opening of both eyes.
	AvgEyeHeight float64 `json:"avg_eye_height"`
}

// Compute derives the gaze ratio from a landmark set.
// Horizontal ratios are measured from the left eye's outer corner and the
// right eye's inner corner; vertical ratios from each eye's vertical midpoint.
func Compute(lm face.Landmarks) Ratio {
	leftIris := geometry.Centroid(lm, face.LeftIris)
	rightIris := geometry.Centroid(lm, face.RightIris)

	leftWidth := geometry.Span(lm[face.LeftEyeOuter].X, lm[face.LeftEyeInner].X)
	rightWidth := geometry.Span(lm[face.RightEyeOuter].X, lm[face.RightEyeInner].X)

	leftHeight := math.Abs(lm[face.LeftEyeTop].Y - lm[face.LeftEyeBottom].Y)
	rightHeight := math.Abs(lm[face.RightEyeTop].Y - lm[face.RightEyeBottom].Y)

	leftX := (leftIris.X - lm[face.LeftEyeOuter].X) / leftWidth
	rightX := (rightIris.X - lm[face.RightEyeInner].X) / rightWidth

	leftMidY := (lm[face.LeftEyeTop].Y + lm[face.LeftEyeBottom].Y) / 2
	rightMidY := (lm[face.RightEyeTop].Y + lm[face.RightEyeBottom].Y) / 2
	leftY := geometry.Ratio(leftIris.Y-leftMidY, leftHeight)
	rightY := geometry.Ratio(rightIris.Y-rightMidY, rightHeight)

	return Ratio{
		LeftX:        leftX,
		RightX:       rightX,
		AvgX:         (leftX + rightX) / 2,
		LeftY:        leftY,
		RightY:       rightY,
		AvgY:         (leftY + rightY) / 2,
		AvgEyeHeight: (leftHeight + rightHeight) / 2,
	}
}
