package score

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/teslashibe/go-focus/pkg/calibration"
	"github.com/teslashibe/go-focus/pkg/expression"
	"github.com/teslashibe/go-focus/pkg/face"
	"github.com/teslashibe/go-focus/pkg/gaze"
	"github.com/teslashibe/go-focus/pkg/geometry"
	"github.com/teslashibe/go-focus/pkg/movement"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func newAggregator(expr bool) *Aggregator {
	var model *expression.Model
	if expr {
		model = expression.DefaultModel()
	}
	return NewAggregator(
		DefaultThresholds(),
		gaze.NewAnalyzer(0.05, 0.004),
		movement.NewAnalyzer(movement.DefaultCapacity, movement.DefaultThreshold),
		model,
	)
}

func baseline() *calibration.Profile {
	p, err := calibration.NewProfile(calibration.Profile{
		GazeX: 0.5, StdGazeX: 0.01, EyeHeight: 0.03, GazeYWeight: 1,
	})
	if err != nil {
		panic(err)
	}
	return p
}

func frame(syn face.Synthetic, pose geometry.Matrix, expr face.Expressions) face.Observation {
	return syn.Observation(0, pose, expr)
}

func TestAggregator_Conditions(t *testing.T) {
	looking := face.DefaultSynthetic()
	away := face.DefaultSynthetic()
	away.GazeX = 0.7
	// Eyes counter-rotated to stay on the screen while the head turns 40 degrees.
	compensated := face.DefaultSynthetic()
	compensated.GazeX = 0.5 - 40*0.004

	tests := []struct {
		name      string
		obs       face.Observation
		wantScore float64
		wantWarn  []Warning
	}{
		{
			name:      "attentive",
			obs:       frame(looking, geometry.Identity(), nil),
			wantScore: 100,
		},
		{
			name:      "no face",
			obs:       face.Observation{},
			wantScore: 0,
			wantWarn:  []Warning{WarnFaceNotDetected},
		},
		{
			name:      "head turned",
			obs:       frame(compensated, geometry.YawRotation(40), nil),
			wantScore: 70,
			wantWarn:  []Warning{WarnHeadAway},
		},
		{
			name:      "head tilted",
			obs:       frame(looking, geometry.PitchRotation(-25), nil),
			wantScore: 70,
			wantWarn:  []Warning{WarnHeadAway},
		},
		{
			name:      "gaze away",
			obs:       frame(away, geometry.Identity(), nil),
			wantScore: 75,
			wantWarn:  []Warning{WarnGazeAway},
		},
		{
			name:      "yawning",
			obs:       frame(looking, geometry.Identity(), face.Expressions{"jawOpen": 0.6}),
			wantScore: 80,
			wantWarn:  []Warning{WarnYawning},
		},
		{
			name: "yawn with smile shape is not a smile",
			obs: frame(looking, geometry.Identity(), face.Expressions{
				"jawOpen": 0.6, "mouthSmileLeft": 0.5, "mouthSmileRight": 0.5,
			}),
			wantScore: 80,
			wantWarn:  []Warning{WarnYawning},
		},
		{
			name:      "expression penalty",
			obs:       frame(looking, geometry.Identity(), face.Expressions{"mouthFrownLeft": 0.4, "mouthFrownRight": 0.4}),
			wantScore: 95,
			wantWarn:  []Warning{"mouth_frown"},
		},
		{
			name: "clamped at zero",
			obs: frame(away, geometry.YawRotation(60), face.Expressions{
				"jawOpen": 0.9, "browDownLeft": 1, "browDownRight": 1,
				"mouthPucker": 1, "mouthPressLeft": 1, "mouthPressRight": 1,
				"eyeWideLeft": 1, "eyeWideRight": 1, "mouthFrownLeft": 1, "mouthFrownRight": 1,
				"browInnerUp": 1, "mouthFunnel": 1,
			}),
			wantScore: 0,
			wantWarn: []Warning{
				WarnHeadAway, WarnGazeAway, WarnYawning,
				"brow_down", "mouth_pucker", "mouth_press", "eye_wide", "mouth_frown", "brow_inner_up", "mouth_funnel",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAggregator(true)
			res := a.Score(tt.obs, baseline(), t0)
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if diff := cmp.Diff(tt.wantWarn, res.Warnings); diff != "" {
				t.Errorf("Warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregator_ExpressionPenaltiesDisabled(t *testing.T) {
	a := newAggregator(false)
	obs := frame(face.DefaultSynthetic(), geometry.Identity(), face.Expressions{"mouthFrownLeft": 0.9, "mouthFrownRight": 0.9})
	if res := a.Score(obs, baseline(), t0); res.Score != 100 {
		t.Errorf("Score = %v, want 100 with expression penalties off", res.Score)
	}
}

func TestAggregator_EyesClosedDebounce(t *testing.T) {
	closed := face.Expressions{"eyeBlinkLeft": 0.8, "eyeBlinkRight": 0.8}
	open := face.Expressions{"eyeBlinkLeft": 0.1, "eyeBlinkRight": 0.1}
	syn := face.DefaultSynthetic()

	a := newAggregator(true)
	p := baseline()

	// 999ms of closed eyes then an open frame never triggers.
	for ms := 0; ms <= 999; ms += 111 {
		res := a.Score(frame(syn, geometry.Identity(), closed), p, at(ms))
		for _, w := range res.Warnings {
			if w == WarnEyesClosed {
				t.Fatalf("eyes_closed at %dms", ms)
			}
		}
	}
	res := a.Score(frame(syn, geometry.Identity(), open), p, at(1100))
	if len(res.Warnings) != 0 {
		t.Fatalf("open frame warnings = %v", res.Warnings)
	}

	// The timer restarted, so 1000ms from the new start is needed.
	a.Score(frame(syn, geometry.Identity(), closed), p, at(1200))
	res = a.Score(frame(syn, geometry.Identity(), closed), p, at(2199))
	if res.Score != 100 {
		t.Errorf("score at 999ms of second closure = %v, want 100", res.Score)
	}
	res = a.Score(frame(syn, geometry.Identity(), closed), p, at(2200))
	if res.Score != 60 || len(res.Warnings) != 1 || res.Warnings[0] != WarnEyesClosed {
		t.Errorf("at 1000ms: score=%v warnings=%v, want 60 [eyes_closed]", res.Score, res.Warnings)
	}
}

func TestAggregator_OneEyeClosedIsNotEyesClosed(t *testing.T) {
	a := newAggregator(true)
	wink := face.Expressions{"eyeBlinkLeft": 0.9, "eyeBlinkRight": 0.1}
	syn := face.DefaultSynthetic()
	for ms := 0; ms <= 3000; ms += 100 {
		res := a.Score(frame(syn, geometry.Identity(), wink), baseline(), at(ms))
		if res.Score != 100 {
			t.Fatalf("wink scored %v at %dms", res.Score, ms)
		}
	}
}

func TestAggregator_FaceLossClearsEyesClosedTimer(t *testing.T) {
	a := newAggregator(true)
	closed := face.Expressions{"eyeBlinkLeft": 0.8, "eyeBlinkRight": 0.8}
	syn := face.DefaultSynthetic()

	a.Score(frame(syn, geometry.Identity(), closed), baseline(), at(0))
	a.Score(face.Observation{}, baseline(), at(500))
	res := a.Score(frame(syn, geometry.Identity(), closed), baseline(), at(1200))
	if res.Score != 100 {
		t.Errorf("score = %v, want 100 after face loss reset the timer", res.Score)
	}
}

func TestAggregator_Restless(t *testing.T) {
	a := newAggregator(true)
	for i := 0; i < movement.DefaultCapacity; i++ {
		syn := face.DefaultSynthetic()
		if i%2 == 0 {
			syn.NoseX = 0.3
		} else {
			syn.NoseX = 0.7
		}
		res := a.Score(frame(syn, geometry.Identity(), nil), baseline(), at(i*33))
		restless := false
		for _, w := range res.Warnings {
			if w == WarnRestless {
				restless = true
			}
		}
		if wantRestless := i+1 >= movement.DefaultCapacity/2; restless != wantRestless {
			t.Errorf("frame %d restless = %v, want %v", i, restless, wantRestless)
		}
	}
}

func TestAggregator_ScoreAlwaysBounded(t *testing.T) {
	a := newAggregator(true)
	p := baseline()
	for i := 0; i < 200; i++ {
		syn := face.DefaultSynthetic()
		syn.GazeX = float64(i%10) / 5
		syn.NoseX = float64(i%7) / 7
		expr := face.Expressions{
			"jawOpen":      float64(i%5) / 4,
			"eyeBlinkLeft": 0.9, "eyeBlinkRight": 0.9,
			"browDownLeft": 1, "mouthPucker": 1, "mouthFunnel": 1,
		}
		res := a.Score(frame(syn, geometry.YawRotation(float64(i%90)), expr), p, at(i*50))
		if res.Score < 0 || res.Score > 100 {
			t.Fatalf("frame %d score %v out of range", i, res.Score)
		}
	}
}

func TestWindow_RollingAverage(t *testing.T) {
	w := NewWindow(5 * time.Second)
	w.Push(100, at(0))
	w.Push(100, at(1000))
	w.Push(100, at(2000))
	w.Push(0, at(2100))

	if got := w.Average(at(2200)); got != 75 {
		t.Errorf("Average at 2200ms = %v, want 75", got)
	}

	got := w.Average(at(5001))
	if want := 200.0 / 3; got != want {
		t.Errorf("Average at 5001ms = %v, want %v", got, want)
	}
	if w.Len() != 3 {
		t.Errorf("Len = %d, want 3 after pruning", w.Len())
	}
}

func TestWindow_EmptyIsFullyFocused(t *testing.T) {
	w := NewWindow(5 * time.Second)
	if got := w.Average(t0); got != 100 {
		t.Errorf("empty Average = %v, want 100", got)
	}
	w.Push(0, t0)
	w.Reset()
	if got := w.Average(t0); got != 100 {
		t.Errorf("Average after Reset = %v, want 100", got)
	}
}

func TestHistory_OnePerInterval(t *testing.T) {
	h := NewHistory(time.Second)
	recorded := 0
	for ms := 0; ms <= 3500; ms += 100 {
		if h.Record(at(ms), 87.6, float64(ms)/1000, expression.Signals{expression.JawOpen: 0.123}) {
			recorded++
		}
	}
	if recorded != 4 {
		t.Fatalf("recorded %d samples, want 4", recorded)
	}

	samples := h.Samples()
	want := HistorySample{Score: 88, ElapsedMS: 3000, MediaTime: 3, Signals: expression.Signals{expression.JawOpen: 0.12}}
	if diff := cmp.Diff(want, samples[3]); diff != "" {
		t.Errorf("last sample mismatch (-want +got):\n%s", diff)
	}

	h.Reset()
	if h.Len() != 0 {
		t.Error("Reset should drop samples")
	}
}

func TestSummarize(t *testing.T) {
	samples := []HistorySample{
		{Score: 100, ElapsedMS: 0, Signals: expression.Signals{expression.JawOpen: 0.1}},
		{Score: 80, ElapsedMS: 1000, Signals: expression.Signals{expression.JawOpen: 0.5}},
		{Score: 61, ElapsedMS: 2000, Signals: expression.Signals{expression.JawOpen: 0.6}},
		{Score: 70, ElapsedMS: 3000, Signals: expression.Signals{expression.JawOpen: 0.2}},
	}

	sum := Summarize(samples)
	if sum.AverageScore != 78 {
		t.Errorf("AverageScore = %d, want 78", sum.AverageScore)
	}
	if sum.MinScore != 61 {
		t.Errorf("MinScore = %d, want 61", sum.MinScore)
	}
	if sum.DurationMS != 3000 || sum.Samples != 4 {
		t.Errorf("DurationMS/Samples = %d/%d, want 3000/4", sum.DurationMS, sum.Samples)
	}

	jaw := sum.Signals[expression.JawOpen]
	want := SignalStats{Average: 0.35, Max: 0.6, ExceedCount: 2, ExceedRate: 50}
	if diff := cmp.Diff(want, jaw); diff != "" {
		t.Errorf("jawOpen stats mismatch (-want +got):\n%s", diff)
	}
	if len(sum.Signals) != len(expression.All) {
		t.Errorf("got stats for %d signals, want %d", len(sum.Signals), len(expression.All))
	}
}

func TestSummarize_SignalsOnlyWhileFacePresent(t *testing.T) {
	var samples []HistorySample
	for i := 0; i < 3; i++ {
		samples = append(samples, HistorySample{
			Score:     90,
			ElapsedMS: int64(i) * 1000,
			Signals:   expression.Signals{expression.BrowDown: 0.5},
		})
	}
	for i := 3; i < 6; i++ {
		samples = append(samples, HistorySample{Score: 0, ElapsedMS: int64(i) * 1000})
	}

	sum := Summarize(samples)
	if sum.Samples != 6 || sum.SignalSamples != 3 {
		t.Errorf("Samples/SignalSamples = %d/%d, want 6/3", sum.Samples, sum.SignalSamples)
	}
	if sum.AverageScore != 45 || sum.MinScore != 0 {
		t.Errorf("AverageScore/MinScore = %d/%d, want 45/0", sum.AverageScore, sum.MinScore)
	}

	want := SignalStats{Average: 0.5, Max: 0.5, ExceedCount: 3, ExceedRate: 100}
	if diff := cmp.Diff(want, sum.Signals[expression.BrowDown]); diff != "" {
		t.Errorf("browDown stats mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_NoFaceAtAll(t *testing.T) {
	sum := Summarize([]HistorySample{{Score: 0}, {Score: 0, ElapsedMS: 1000}})
	if sum.Samples != 2 || sum.SignalSamples != 0 {
		t.Errorf("Samples/SignalSamples = %d/%d, want 2/0", sum.Samples, sum.SignalSamples)
	}
	if len(sum.Signals) != 0 {
		t.Errorf("Signals = %v, want none", sum.Signals)
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	if sum.Samples != 0 || sum.AverageScore != 0 {
		t.Errorf("empty summary = %+v", sum)
	}
}

func TestExceedThreshold(t *testing.T) {
	if got := ExceedThreshold(expression.EyeBlink); got != 0.5 {
		t.Errorf("eyeBlink threshold = %v, want 0.5", got)
	}
	if got := ExceedThreshold(expression.Smile); got != 0.3 {
		t.Errorf("smile threshold = %v, want default 0.3", got)
	}
	if got := ExceedThreshold(expression.MouthFunnel); got != 0.3 {
		t.Errorf("mouthFunnel threshold = %v, want default 0.3", got)
	}
}
