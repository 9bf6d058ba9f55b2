// Package expression turns expression-intensity coefficients into focus
// penalties relative to the subject's calibrated resting face.
package expression

import (
	"math"

	"github.com/teslashibe/go-focus/pkg/face"
)

// Signal names a tracked expression signal. Bilateral blendshapes are
// averaged into one signal.
type Signal string

const (
	BrowDown    Signal = "browDown"    // AU4, brow lowering
	EyeSquint   Signal = "eyeSquint"   // AU6/AU7
	Smile       Signal = "smile"       // AU12
	JawOpen     Signal = "jawOpen"     // AU26/AU27
	EyeBlink    Signal = "eyeBlink"    // AU45
	MouthPucker Signal = "mouthPucker" // AU18
	MouthPress  Signal = "mouthPress"  // AU24
	EyeWide     Signal = "eyeWide"     // AU5
	MouthFrown  Signal = "mouthFrown"  // AU15
	BrowInnerUp Signal = "browInnerUp" // AU1
	MouthFunnel Signal = "mouthFunnel" // AU22
)

// All lists every tracked signal in reporting order.
var All = []Signal{
	BrowDown, EyeSquint, Smile, JawOpen, EyeBlink, MouthPucker,
	MouthPress, EyeWide, MouthFrown, BrowInnerUp, MouthFunnel,
}

// sources maps each signal to the blendshape categories it averages.
var sources = map[Signal][]string{
	BrowDown:    {"browDownLeft", "browDownRight"},
	EyeSquint:   {"eyeSquintLeft", "eyeSquintRight"},
	Smile:       {"mouthSmileLeft", "mouthSmileRight"},
	JawOpen:     {"jawOpen"},
	EyeBlink:    {"eyeBlinkLeft", "eyeBlinkRight"},
	MouthPucker: {"mouthPucker"},
	MouthPress:  {"mouthPressLeft", "mouthPressRight"},
	EyeWide:     {"eyeWideLeft", "eyeWideRight"},
	MouthFrown:  {"mouthFrownLeft", "mouthFrownRight"},
	BrowInnerUp: {"browInnerUp"},
	MouthFunnel: {"mouthFunnel"},
}

// Signals holds one value per tracked signal.
type Signals map[Signal]float64

// Extract averages the blendshape categories behind every tracked signal.
// Missing categories read as 0.
func Extract(e face.Expressions) Signals {
	out := make(Signals, len(All))
	for _, sig := range All {
		names := sources[sig]
		sum := 0.0
		for _, name := range names {
			sum += e.Get(name)
		}
		out[sig] = sum / float64(len(names))
	}
	return out
}

// Rounded returns a copy with every value rounded to two decimals.
func (s Signals) Rounded() Signals {
	out := make(Signals, len(s))
	for k, v := range s {
		out[k] = math.Round(v*100) / 100
	}
	return out
}

// Mean averages a series of signal snapshots per signal.
func Mean(series []Signals) Signals {
	out := make(Signals, len(All))
	for _, sig := range All {
		out[sig] = 0
		if len(series) == 0 {
			continue
		}
		for _, s := range series {
			out[sig] += s[sig]
		}
		out[sig] /= float64(len(series))
	}
	return out
}
