// Package face defines the per-frame face observation produced by an
// external face-mesh tracker and consumed by the focus engine.
package face

import "github.com/teslashibe/go-focus/pkg/geometry"

// Face mesh landmark indices (478-point mesh with refined irises).
const (
	NoseTip = 1

	LeftEyeOuter  = 33
	LeftEyeInner  = 133
	LeftEyeTop    = 159
	LeftEyeBottom = 145

	RightEyeOuter  = 263
	RightEyeInner  = 362
	RightEyeTop    = 386
	RightEyeBottom = 374

	NumLandmarks = 478
)

// Iris landmark rings.
var (
	LeftIris  = []int{468, 469, 470, 471, 472}
	RightIris = []int{473, 474, 475, 476, 477}
)

// Landmarks is one face's index-addressable point set.
type Landmarks []geometry.Point

// Valid reports whether the set covers every index the engine reads.
func (l Landmarks) Valid() bool {
	return len(l) >= NumLandmarks
}

// Expressions maps expression-intensity names (blendshape categories) to
// values in [0,1].
type Expressions map[string]float64

// Get returns the named intensity, or 0 when absent.
func (e Expressions) Get(name string) float64 {
	return e[name]
}

// Observation is a single tracker frame. Zero landmark sets or zero
// expression records means no face was detected.
type Observation struct {
	// Timestamp is the producer's frame time in milliseconds. Frames that
	// repeat the previous timestamp are skipped.
	Timestamp int64 `json:"ts"`

	// MediaTime is the playback position in seconds, recorded with history samples.
	MediaTime float64 `json:"media_time,omitempty"`

	Landmarks   []Landmarks       `json:"landmarks,omitempty"`
	Expressions []Expressions     `json:"expressions,omitempty"`
	Transforms  []geometry.Matrix `json:"transforms,omitempty"`
}

// PrimaryLandmarks returns the first landmark set if it is usable.
func (o Observation) PrimaryLandmarks() (Landmarks, bool) {
	if len(o.Landmarks) == 0 || !o.Landmarks[0].Valid() {
		return nil, false
	}
	return o.Landmarks[0], true
}

// PrimaryExpressions returns the first expression record if it has any values.
func (o Observation) PrimaryExpressions() (Expressions, bool) {
	if len(o.Expressions) == 0 || len(o.Expressions[0]) == 0 {
		return nil, false
	}
	return o.Expressions[0], true
}

// PrimaryTransform returns the first head-pose transform.
func (o Observation) PrimaryTransform() (geometry.Matrix, bool) {
	if len(o.Transforms) == 0 {
		return geometry.Matrix{}, false
	}
	return o.Transforms[0], true
}

// FacePresent reports whether the frame carries landmarks and expressions,
// which is what scoring needs.
func (o Observation) FacePresent() bool {
	_, hasLandmarks := o.PrimaryLandmarks()
	_, hasExpressions := o.PrimaryExpressions()
	return hasLandmarks && hasExpressions
}

// Complete reports whether pose, landmarks and expressions are all present,
// which is what calibration needs.
func (o Observation) Complete() bool {
	_, hasPose := o.PrimaryTransform()
	return hasPose && o.FacePresent()
}
