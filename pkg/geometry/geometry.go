// Package geometry provides the numeric helpers behind focus detection:
// landmark centroids, guarded ratios, pose-matrix decomposition and
// population statistics.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Epsilon is the smallest span accepted as a ratio denominator.
const Epsilon = 1e-3

// Point is a normalized 3D landmark position (each axis 0-1).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Centroid returns the mean position of the points at the given indices.
// Indices outside the slice are ignored; an empty selection yields the zero point.
func Centroid(points []Point, indices []int) Point {
	var c Point
	n := 0
	for _, idx := range indices {
		if idx < 0 || idx >= len(points) {
			continue
		}
		c.X += points[idx].X
		c.Y += points[idx].Y
		c.Z += points[idx].Z
		n++
	}
	if n == 0 {
		return Point{}
	}
	c.X /= float64(n)
	c.Y /= float64(n)
	c.Z /= float64(n)
	return c
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Span returns |a-b|, floored at Epsilon so it is always safe to divide by.
func Span(a, b float64) float64 {
	s := math.Abs(a - b)
	if s < Epsilon || math.IsNaN(s) {
		return Epsilon
	}
	return s
}

// Ratio divides num by den, flooring |den| at Epsilon while keeping its sign.
func Ratio(num, den float64) float64 {
	if math.Abs(den) < Epsilon || math.IsNaN(den) {
		if den < 0 {
			return num / -Epsilon
		}
		return num / Epsilon
	}
	return num / den
}

// MeanStd returns the arithmetic mean and population standard deviation.
// An empty input yields zeros.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// Mean returns the arithmetic mean, or 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Clamp restricts a value to a range.
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}
