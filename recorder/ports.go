package recorder

import (
	"context"
	"image"
)

// ChunkSamples is the number of 16-bit mono samples read from the microphone
// per video frame.
const ChunkSamples = 1024

// VideoDevice is an open camera.
type VideoDevice interface {
	// Read blocks for the next frame. A nil image with a nil error means
	// the device had no frame for this tick.
	Read() (image.Image, error)
	// FPS is the device's nominal frame rate; non-positive when unknown.
	FPS() float64
	// Size is the frame size in pixels.
	Size() image.Point
	Close() error
}

// FrameWriter appends frames to the raw video temp file.
type FrameWriter interface {
	Write(frame image.Image) error
	Close() error
}

// AudioDevice is an open microphone stream.
type AudioDevice interface {
	// Read blocks until len(buf) samples have been captured.
	Read(buf []int16) error
	Close() error
}

// Devices opens capture devices and raw writers for a session.
type Devices interface {
	OpenVideo(index int) (VideoDevice, error)
	CreateVideoWriter(path string, fps float64, size image.Point) (FrameWriter, error)
	OpenAudio(index, sampleRate, chunkSamples int) (AudioDevice, error)
}

// Muxer combines the raw video and audio temp files into the final file.
type Muxer interface {
	Mux(ctx context.Context, video, audio, out string) error
}
