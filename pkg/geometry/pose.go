package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// Matrix is a 4x4 facial transformation matrix in column-major order,
// as produced by face mesh trackers.
type Matrix [16]float64

// MatrixFromRotation embeds a column-major 3x3 rotation into the 4x4 layout.
func MatrixFromRotation(r [9]float64) Matrix {
	return Matrix{
		r[0], r[1], r[2], 0,
		r[3], r[4], r[5], 0,
		r[6], r[7], r[8], 0,
		0, 0, 0, 1,
	}
}

// MatrixFromSlice builds a Matrix from 16 (4x4) or 9 (3x3) column-major values.
func MatrixFromSlice(values []float64) (Matrix, bool) {
	switch len(values) {
	case 16:
		var m Matrix
		copy(m[:], values)
		return m, true
	case 9:
		var r [9]float64
		copy(r[:], values)
		return MatrixFromRotation(r), true
	default:
		return Matrix{}, false
	}
}

// UnmarshalJSON accepts either a 16-element 4x4 transform or a 9-element
// 3x3 rotation.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	parsed, ok := MatrixFromSlice(values)
	if !ok {
		return fmt.Errorf("transform has %d values, want 16 or 9", len(values))
	}
	*m = parsed
	return nil
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Euler holds a head orientation in degrees.
type Euler struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// ToEuler decomposes the rotation part into yaw, pitch and roll (degrees).
func (m Matrix) ToEuler() Euler {
	return Euler{
		Yaw:   Degrees(math.Atan2(m[8], m[10])),
		Pitch: Degrees(math.Atan2(-m[9], math.Sqrt(m[8]*m[8]+m[10]*m[10]))),
		Roll:  Degrees(math.Atan2(m[1], m[0])),
	}
}

// YawRotation returns a transform rotated about the vertical axis by deg degrees,
// so that ToEuler reports the same yaw.
func YawRotation(deg float64) Matrix {
	rad := deg * math.Pi / 180.0
	m := Identity()
	m[0] = math.Cos(rad)
	m[2] = -math.Sin(rad)
	m[8] = math.Sin(rad)
	m[10] = math.Cos(rad)
	return m
}

// PitchRotation returns a transform rotated about the lateral axis by deg degrees,
// so that ToEuler reports the same pitch.
func PitchRotation(deg float64) Matrix {
	rad := deg * math.Pi / 180.0
	m := Identity()
	m[5] = math.Cos(rad)
	m[6] = math.Sin(rad)
	m[9] = -math.Sin(rad)
	m[10] = math.Cos(rad)
	return m
}
