package recorder

import (
	"math"
	"testing"
	"time"
)

func constChunk(v int16) []int16 {
	c := make([]int16, ChunkSamples)
	for i := range c {
		c[i] = v
	}
	return c
}

func TestRMS(t *testing.T) {
	tests := []struct {
		name  string
		chunk []int16
		want  float64
	}{
		{"empty", nil, 0},
		{"silence", constChunk(0), 0},
		{"full scale", constChunk(math.MaxInt16), 1},
		{"half", constChunk(math.MaxInt16 / 2), float64(math.MaxInt16/2) / math.MaxInt16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rms(tt.chunk); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("rms = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelMeter_SilenceSequence(t *testing.T) {
	m := NewLevelMeter(DefaultSilenceThreshold, time.Second)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	quiet, loud := constChunk(0), constChunk(8000)

	steps := []struct {
		at         time.Duration
		chunk      []int16
		wantReport bool
		wantSilent bool
	}{
		{0, loud, false, false},
		{100 * time.Millisecond, quiet, false, false},  // quiet starts
		{900 * time.Millisecond, quiet, false, false},  // 0.8s quiet
		{1100 * time.Millisecond, quiet, true, true},   // 1.0s quiet
		{1500 * time.Millisecond, quiet, false, true},  // reported once
		{1600 * time.Millisecond, loud, false, false},  // sound again
		{1700 * time.Millisecond, quiet, false, false}, // new quiet run
		{2700 * time.Millisecond, quiet, true, true},
	}

	for i, s := range steps {
		got := m.Process(s.chunk, t0.Add(s.at))
		if got != s.wantReport {
			t.Errorf("step %d: report = %v, want %v", i, got, s.wantReport)
		}
		if m.Silent() != s.wantSilent {
			t.Errorf("step %d: silent = %v, want %v", i, m.Silent(), s.wantSilent)
		}
	}

	if m.Level() != 0 {
		t.Errorf("level = %v, want 0 after a quiet chunk", m.Level())
	}
	m.Reset()
	if m.Silent() || m.Level() != 0 {
		t.Error("Reset did not clear the meter")
	}
}
