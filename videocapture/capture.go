// Package videocapture opens cameras and writes the raw video temp file.
package videocapture

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when the binary was built without OpenCV.
	ErrUnsupported = errors.New("videocapture: not supported in this build")

	// ErrDisconnected is returned by Read once the camera has stopped
	// delivering frames for MaxMissedFrames consecutive reads.
	ErrDisconnected = errors.New("videocapture: camera stopped delivering frames")

	// ErrClosed is returned by Read and Write after Close.
	ErrClosed = errors.New("videocapture: closed")
)

// Codec is the FourCC of the raw video temp file.
const Codec = "mp4v"

// MaxMissedFrames is the number of consecutive empty reads after which a
// camera is considered disconnected.
const MaxMissedFrames = 150

// missCounter turns a run of empty reads into ErrDisconnected.
type missCounter struct {
	limit int
	n     int
}

// observe records one read and reports whether the device is gone.
func (m *missCounter) observe(gotFrame bool) error {
	if gotFrame {
		m.n = 0
		return nil
	}
	m.n++
	if m.n >= m.limit {
		return fmt.Errorf("%w: %d empty reads", ErrDisconnected, m.n)
	}
	return nil
}
