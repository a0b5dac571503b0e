package recorder

import "math"

// AudioBuffer accumulates fixed-size PCM chunks for the whole session.
// It is owned by the capture worker.
type AudioBuffer struct {
	chunks     [][]int16
	sampleRate int
}

// NewAudioBuffer creates an empty buffer for audio at sampleRate.
func NewAudioBuffer(sampleRate int) *AudioBuffer {
	return &AudioBuffer{
		chunks:     make([][]int16, 0, 30*60), // about a minute at 30 fps
		sampleRate: sampleRate,
	}
}

// Append stores a copy of chunk scaled by volume.
func (b *AudioBuffer) Append(chunk []int16, volume float64) {
	out := make([]int16, len(chunk))
	for i, s := range chunk {
		out[i] = scale(s, volume)
	}
	b.chunks = append(b.chunks, out)
}

// Chunks returns the stored chunks in capture order. The slice is shared
// with the buffer.
func (b *AudioBuffer) Chunks() [][]int16 {
	return b.chunks
}

// Len returns the number of chunks.
func (b *AudioBuffer) Len() int {
	return len(b.chunks)
}

// Samples returns the total number of samples.
func (b *AudioBuffer) Samples() int {
	n := 0
	for _, c := range b.chunks {
		n += len(c)
	}
	return n
}

// Duration returns the buffered audio length in milliseconds.
func (b *AudioBuffer) Duration() int64 {
	if b.sampleRate == 0 {
		return 0
	}
	return int64(float64(b.Samples()) / float64(b.sampleRate) * 1000)
}

// Clear drops every chunk.
func (b *AudioBuffer) Clear() {
	b.chunks = nil
}

func scale(s int16, volume float64) int16 {
	if volume == 1 {
		return s
	}
	v := math.Round(float64(s) * volume)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
