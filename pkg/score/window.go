package score

import "time"

// Sample is one scored frame.
type Sample struct {
	Score float64
	At    time.Time
}

// Window is a time-bounded buffer of recent scores.
type Window struct {
	span    time.Duration
	samples []Sample
}

// NewWindow creates a window keeping samples younger than span.
func NewWindow(span time.Duration) *Window {
	return &Window{span: span}
}

// Push appends a sample.
func (w *Window) Push(score float64, at time.Time) {
	w.samples = append(w.samples, Sample{Score: score, At: at})
}

// Average prunes samples at least span old and returns the mean of the
// rest. An empty window averages 100.
func (w *Window) Average(now time.Time) float64 {
	w.prune(now)
	if len(w.samples) == 0 {
		return 100
	}
	sum := 0.0
	for _, s := range w.samples {
		sum += s.Score
	}
	return sum / float64(len(w.samples))
}

// Len returns the number of retained samples.
func (w *Window) Len() int {
	return len(w.samples)
}

// Reset drops every sample.
func (w *Window) Reset() {
	w.samples = w.samples[:0]
}

func (w *Window) prune(now time.Time) {
	i := 0
	for i < len(w.samples) && now.Sub(w.samples[i].At) >= w.span {
		i++
	}
	if i > 0 {
		w.samples = append(w.samples[:0], w.samples[i:]...)
	}
}
