package gaze

import (
	"math"
	"testing"

	"github.com/teslashibe/go-focus/pkg/face"
)

func TestCompute_SyntheticFace(t *testing.T) {
	s := face.DefaultSynthetic()
	s.GazeX = 0.6
	s.GazeY = 0.2

	r := Compute(s.Landmarks())

	if math.Abs(r.AvgX-0.6) > 1e-9 {
		t.Errorf("AvgX = %v, want 0.6", r.AvgX)
	}
	if math.Abs(r.LeftX-r.RightX) > 1e-9 {
		t.Errorf("LeftX %v != RightX %v for symmetric face", r.LeftX, r.RightX)
	}
	if math.Abs(r.AvgY-0.2) > 1e-9 {
		t.Errorf("AvgY = %v, want 0.2", r.AvgY)
	}
	if math.Abs(r.AvgEyeHeight-0.03) > 1e-9 {
		t.Errorf("AvgEyeHeight = %v, want 0.03", r.AvgEyeHeight)
	}
}

func TestCompute_ClosedEyesDoNotBlowUp(t *testing.T) {
	s := face.DefaultSynthetic()
	s.EyeHeight = 0

	r := Compute(s.Landmarks())

	if math.IsInf(r.AvgY, 0) || math.IsNaN(r.AvgY) {
		t.Errorf("AvgY = %v, want finite value", r.AvgY)
	}
}

func TestCompute_CollapsedEyeWidth(t *testing.T) {
	lm := face.DefaultSynthetic().Landmarks()
	lm[face.LeftEyeInner] = lm[face.LeftEyeOuter]

	r := Compute(lm)
	if math.IsInf(r.LeftX, 0) || math.IsNaN(r.LeftX) {
		t.Errorf("LeftX = %v, want finite value", r.LeftX)
	}
}

func TestIsAway_Thresholds(t *testing.T) {
	a := NewAnalyzer(0.05, 0.004)
	base := Baseline{Yaw: 0, GazeX: 0.5, StdGazeX: 0.01}

	tests := []struct {
		name  string
		gazeX float64
		yaw   float64
		want  bool
	}{
		{"far right", 0.60, 0, true},       // diff 0.10 > max(0.05, 0.03)
		{"slightly right", 0.52, 0, false}, // diff 0.02 <= 0.05
		{"far left", 0.40, 0, true},
		{"just inside the floor", 0.549, 0, false},
		// Head turned right 20 degrees: expected gaze shifts to 0.42
		{"compensated by yaw", 0.42, 20, false},
		{"uncompensated when looking straight with head turned", 0.50, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.IsAway(Ratio{AvgX: tt.gazeX}, tt.yaw, base)
			if got != tt.want {
				t.Errorf("IsAway(gazeX=%v, yaw=%v) = %v, want %v", tt.gazeX, tt.yaw, got, tt.want)
			}
		})
	}
}

func TestIsAway_NoisyBaselineWidensLimit(t *testing.T) {
	a := NewAnalyzer(0.05, 0.004)
	base := Baseline{GazeX: 0.5, StdGazeX: 0.04}

	// 3 * 0.04 = 0.12 exceeds the fixed floor
	if a.IsAway(Ratio{AvgX: 0.60}, 0, base) {
		t.Error("diff 0.10 should be within 3 std of a noisy baseline")
	}
	if !a.IsAway(Ratio{AvgX: 0.63}, 0, base) {
		t.Error("diff 0.13 should exceed 3 std")
	}
}

func TestIsAway_CompensationDisabled(t *testing.T) {
	a := NewAnalyzer(0.12, 0)
	base := Baseline{GazeX: 0.5}

	if a.IsAway(Ratio{AvgX: 0.5}, 30, base) {
		t.Error("without compensation yaw must not move the expected gaze")
	}
}

func TestEvaluate_ReportsVerticalDiff(t *testing.T) {
	a := NewAnalyzer(0.05, 0.004)
	d := a.Evaluate(Ratio{AvgX: 0.5, AvgY: 0.3}, 0, Baseline{GazeX: 0.5}, 0.1)

	if d.Away {
		t.Error("vertical deviation must not mark gaze away")
	}
	if math.Abs(d.DiffY-0.2) > 1e-9 {
		t.Errorf("DiffY = %v, want 0.2", d.DiffY)
	}
}
