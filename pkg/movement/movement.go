// Package movement detects restless head movement from the recent trail of
// face-centre positions.
package movement

import (
	"github.com/teslashibe/go-focus/pkg/face"
	"github.com/teslashibe/go-focus/pkg/geometry"
)

// Default analyzer parameters.
const (
	DefaultCapacity  = 30   // about one second of frames at 30 fps
	DefaultThreshold = 0.07 // normalized std of the face centre
)

// Analyzer keeps a fixed-capacity rolling buffer of face centres.
type Analyzer struct {
	capacity  int
	threshold float64

	xs   []float64
	ys   []float64
	next int
}

// NewAnalyzer creates an analyzer. Non-positive arguments fall back to defaults.
func NewAnalyzer(capacity int, threshold float64) *Analyzer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Analyzer{
		capacity:  capacity,
		threshold: threshold,
		xs:        make([]float64, 0, capacity),
		ys:        make([]float64, 0, capacity),
	}
}

// Observe records the face centre (nose tip) of a landmark set and reports
// whether movement is restless.
func (a *Analyzer) Observe(lm face.Landmarks) bool {
	a.Push(lm[face.NoseTip])
	return a.Restless()
}

// Push appends a face centre, evicting the oldest once at capacity.
func (a *Analyzer) Push(p geometry.Point) {
	if len(a.xs) < a.capacity {
		a.xs = append(a.xs, p.X)
		a.ys = append(a.ys, p.Y)
		return
	}
	a.xs[a.next] = p.X
	a.ys[a.next] = p.Y
	a.next = (a.next + 1) % a.capacity
}

// Len returns the number of buffered positions.
func (a *Analyzer) Len() int {
	return len(a.xs)
}

// Spread returns the population std of the buffered x and y positions.
func (a *Analyzer) Spread() (stdX, stdY float64) {
	_, stdX = geometry.MeanStd(a.xs)
	_, stdY = geometry.MeanStd(a.ys)
	return stdX, stdY
}

// Restless reports whether either axis spreads beyond the threshold.
// With less than half the buffer filled there is not enough evidence and
// the answer is always false.
func (a *Analyzer) Restless() bool {
	if len(a.xs)*2 < a.capacity {
		return false
	}
	stdX, stdY := a.Spread()
	return stdX > a.threshold || stdY > a.threshold
}

// Reset clears the buffer.
func (a *Analyzer) Reset() {
	a.xs = a.xs[:0]
	a.ys = a.ys[:0]
	a.next = 0
}
