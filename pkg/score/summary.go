package score

import (
	"math"

	"github.com/teslashibe/go-focus/pkg/expression"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// exceedThresholds are the per-signal levels counted as "active" in session
// statistics. Signals not listed, smile included, use defaultExceedThreshold.
var exceedThresholds = map[expression.Signal]float64{
	expression.BrowDown:    0.3,
	expression.EyeSquint:   0.4,
	expression.JawOpen:     0.4,
	expression.EyeBlink:    0.5,
	expression.MouthPucker: 0.4,
}

const defaultExceedThreshold = 0.3

// ExceedThreshold returns the statistics threshold for a signal.
func ExceedThreshold(sig expression.Signal) float64 {
	if v, ok := exceedThresholds[sig]; ok {
		return v
	}
	return defaultExceedThreshold
}

// SignalStats summarizes one expression signal over a session.
type SignalStats struct {
	Average     float64 `json:"average"`
	Max         float64 `json:"max"`
	ExceedCount int     `json:"exceed_count"`
	ExceedRate  float64 `json:"exceed_rate"` // percent of samples
}

// Summary is the off-line report of a session. Score figures cover every
// sample; signal statistics cover only the SignalSamples taken while a face
// was present.
type Summary struct {
	AverageScore  int                               `json:"average_score"`
	MinScore      int                               `json:"min_score"`
	Samples       int                               `json:"samples"`
	SignalSamples int                               `json:"signal_samples"`
	DurationMS    int64                             `json:"duration_ms"`
	Signals       map[expression.Signal]SignalStats `json:"signals"`
}

// Summarize computes the session summary from history samples.
func Summarize(samples []HistorySample) Summary {
	sum := Summary{Samples: len(samples), Signals: make(map[expression.Signal]SignalStats)}
	if len(samples) == 0 {
		return sum
	}

	scores := make([]float64, len(samples))
	var present []expression.Signals
	for i, s := range samples {
		scores[i] = float64(s.Score)
		if s.Signals != nil {
			present = append(present, s.Signals)
		}
	}
	sum.AverageScore = int(math.Round(stat.Mean(scores, nil)))
	sum.MinScore = int(floats.Min(scores))
	sum.DurationMS = samples[len(samples)-1].ElapsedMS
	sum.SignalSamples = len(present)
	if len(present) == 0 {
		return sum
	}

	values := make([]float64, len(present))
	for _, sig := range expression.All {
		for i, signals := range present {
			values[i] = signals[sig]
		}
		threshold := ExceedThreshold(sig)
		count := 0
		for _, v := range values {
			if v > threshold {
				count++
			}
		}
		sum.Signals[sig] = SignalStats{
			Average:     round(stat.Mean(values, nil), 3),
			Max:         floats.Max(values),
			ExceedCount: count,
			ExceedRate:  round(float64(count)*100/float64(len(values)), 1),
		}
	}
	return sum
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
