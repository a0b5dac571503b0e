package recorder

import (
	"math"
	"sync/atomic"
	"time"
)

// Silence detection defaults.
const (
	DefaultSilenceThreshold = 0.001 // RMS of full scale, about -60 dBFS
	DefaultSilenceDuration  = 5 * time.Second
)

// LevelMeter tracks the microphone input level and detects long stretches
// of silence, which usually mean a muted or disconnected microphone.
// Process is called by the capture worker; Level and Silent may be called
// from any goroutine.
type LevelMeter struct {
	threshold float64
	silence   time.Duration

	quietSince time.Time

	level  atomic.Uint64 // math.Float64bits
	silent atomic.Bool
}

// NewLevelMeter creates a meter that reports silence once the RMS level
// stays at or below threshold for the given duration.
func NewLevelMeter(threshold float64, silence time.Duration) *LevelMeter {
	return &LevelMeter{threshold: threshold, silence: silence}
}

// Process measures a chunk captured at now. It reports true only on the
// chunk where the input becomes silent.
func (m *LevelMeter) Process(chunk []int16, now time.Time) bool {
	level := rms(chunk)
	m.level.Store(math.Float64bits(level))

	if level > m.threshold {
		m.quietSince = time.Time{}
		m.silent.Store(false)
		return false
	}
	if m.quietSince.IsZero() {
		m.quietSince = now
	}
	if m.silent.Load() || now.Sub(m.quietSince) < m.silence {
		return false
	}
	m.silent.Store(true)
	return true
}

// Level returns the RMS level of the last chunk in [0, 1].
func (m *LevelMeter) Level() float64 {
	return math.Float64frombits(m.level.Load())
}

// Silent reports whether the input is currently considered silent.
func (m *LevelMeter) Silent() bool {
	return m.silent.Load()
}

// Reset clears the meter.
func (m *LevelMeter) Reset() {
	m.quietSince = time.Time{}
	m.level.Store(0)
	m.silent.Store(false)
}

// rms returns the root mean square of samples relative to full scale.
func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
