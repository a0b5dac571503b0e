// Package audiocapture reads microphone audio as blocking chunks of 16-bit
// mono PCM.
package audiocapture

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrUnsupported is returned when the binary was built without
	// microphone support.
	ErrUnsupported = errors.New("audiocapture: not supported in this build")

	// ErrNoDevice is returned when the requested input device does not exist
	// or has no input channels.
	ErrNoDevice = errors.New("audiocapture: no such input device")

	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("audiocapture: stream closed")
)

// Device describes an audio input device.
type Device struct {
	Index             int     `json:"index"`
	Name              string  `json:"name"`
	HostAPI           string  `json:"hostApi"`
	InputChannels     int     `json:"inputChannels"`
	DefaultSampleRate float64 `json:"defaultSampleRate"`
}

// Config holds configuration for a microphone stream.
type Config struct {
	Device       int // index as listed by Devices
	SampleRate   int // default 30720 (30 fps × 1024)
	ChunkSamples int // samples per device buffer, default 1024
}

// DefaultConfig returns the default stream configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:   30 * 1024,
		ChunkSamples: 1024,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = d.SampleRate
	}
	if c.ChunkSamples <= 0 {
		c.ChunkSamples = d.ChunkSamples
	}
}

// errOverflow marks a recoverable input overflow reported by a device read.
var errOverflow = errors.New("audiocapture: input overflowed")

// readFull fills out by repeatedly calling read, which refills buf.
// Overflows lose samples inside the device but the data in buf is still
// usable, so they are logged and not returned.
func readFull(out, buf []int16, read func() error) error {
	if len(buf) == 0 {
		return fmt.Errorf("audiocapture: empty device buffer")
	}
	for filled := 0; filled < len(out); {
		if err := read(); err != nil {
			if !errors.Is(err, errOverflow) {
				return err
			}
			slog.Debug("audio input overflowed")
		}
		filled += copy(out[filled:], buf)
	}
	return nil
}
