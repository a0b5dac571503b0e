// Package media writes the session artifacts: the audio temp container, the
// final muxed recording, and the names they are stored under.
package media

import (
	"errors"
	"time"
)

// TimeLayout is the timestamp format used in artifact names (DD-MM-YYYY_HH-MM-SS).
const TimeLayout = "02-01-2006_15-04-05"

// Artifact extensions.
const (
	RecordingExt  = ".mp4"
	ScreenshotExt = ".png"
	AudioExt      = ".wav"
)

// ErrEmptyPath is returned when an output path is missing.
var ErrEmptyPath = errors.New("media: empty path")

// RecordingName returns the final file name of a session stopped at t.
func RecordingName(t time.Time) string {
	return "Recording-" + t.Format(TimeLayout) + RecordingExt
}

// ScreenshotName returns the file name of a screenshot taken at t.
func ScreenshotName(t time.Time) string {
	return "Screenshot-" + t.Format(TimeLayout) + ScreenshotExt
}

// TempNames returns the hidden raw-video and raw-audio temp file names for a
// session.
func TempNames(sessionID string) (video, audio string) {
	return "." + sessionID + "-video" + RecordingExt, "." + sessionID + "-audio" + AudioExt
}
