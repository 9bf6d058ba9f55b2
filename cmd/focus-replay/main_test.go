package main

import (
	"strings"
	"testing"
)

func TestParseSpan(t *testing.T) {
	tests := []struct {
		raw     string
		want    span
		wantErr bool
	}{
		{"", span{}, false},
		{"8:12", span{8, 12}, false},
		{"1.5:2", span{1.5, 2}, false},
		{"8", span{}, true},
		{"a:2", span{}, true},
	}
	for _, tt := range tests {
		got, err := parseSpan(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSpan(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSpan(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestSynthesize(t *testing.T) {
	frames := synthesize(100, 10, span{2, 4}, span{})
	if len(frames) != 100 {
		t.Fatalf("len = %d, want 100", len(frames))
	}
	for i, obs := range frames {
		sec := float64(obs.Timestamp) / 1000
		away := sec >= 2 && sec < 4
		if obs.FacePresent() == away {
			t.Errorf("frame %d at %.1fs: FacePresent = %v", i, sec, obs.FacePresent())
		}
		if i > 0 && obs.Timestamp <= frames[i-1].Timestamp {
			t.Errorf("frame %d timestamp %d not increasing", i, obs.Timestamp)
		}
	}
}

func TestReadFrames(t *testing.T) {
	in := `{"ts":33}

{"ts":66,"media_time":0.066}
`
	frames, err := readFrames(strings.NewReader(in))
	if err != nil {
		t.Fatalf("readFrames error: %v", err)
	}
	if len(frames) != 2 || frames[1].Timestamp != 66 || frames[1].MediaTime != 0.066 {
		t.Errorf("frames = %+v", frames)
	}

	if _, err := readFrames(strings.NewReader("{\"ts\":1}\nnot json\n")); err == nil {
		t.Error("expected error for malformed line")
	} else if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name the line", err)
	}
}
