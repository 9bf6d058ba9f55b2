package score

import (
	"math"
	"time"

	"github.com/teslashibe/go-focus/pkg/expression"
)

// HistorySample is one reporting-interval entry of the session history.
type HistorySample struct {
	Score     int                `json:"score"`
	ElapsedMS int64              `json:"elapsed_ms"`
	MediaTime float64            `json:"media_time"`
	Signals   expression.Signals `json:"signals,omitempty"`
}

// History keeps at most one sample per interval for session summaries.
type History struct {
	interval time.Duration
	start    time.Time
	last     time.Time
	samples  []HistorySample
}

// NewHistory creates a history sampling once per interval.
func NewHistory(interval time.Duration) *History {
	return &History{interval: interval}
}

// Record stores the sample if an interval has passed since the previous
// one. The first sample is always stored.
func (h *History) Record(now time.Time, score, mediaTime float64, signals expression.Signals) bool {
	if len(h.samples) > 0 && now.Sub(h.last) < h.interval {
		return false
	}
	if len(h.samples) == 0 {
		h.start = now
	}
	h.last = now

	var snap expression.Signals
	if signals != nil {
		snap = signals.Rounded()
	}
	h.samples = append(h.samples, HistorySample{
		Score:     int(math.Round(score)),
		ElapsedMS: now.Sub(h.start).Milliseconds(),
		MediaTime: mediaTime,
		Signals:   snap,
	})
	return true
}

// Samples returns a copy of the recorded samples.
func (h *History) Samples() []HistorySample {
	out := make([]HistorySample, len(h.samples))
	copy(out, h.samples)
	return out
}

// Len returns the number of samples.
func (h *History) Len() int {
	return len(h.samples)
}

// Reset drops every sample.
func (h *History) Reset() {
	h.samples = nil
	h.start = time.Time{}
	h.last = time.Time{}
}
