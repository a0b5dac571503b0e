// Package types provides shared type definitions for the application.
package types

import "fmt"

// Settings is the per-session device and output configuration.
// It is read-only to the recorder for the lifetime of a session.
type Settings struct {
	CameraIndex     int    `json:"camera_index" yaml:"camera_index"`
	MicrophoneIndex int    `json:"microphone_index" yaml:"microphone_index"`
	SavePath        string `json:"save_path" yaml:"save_path"`
	ScreenshotPath  string `json:"screenshot_path" yaml:"screenshot_path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Gestures
// ─────────────────────────────────────────────────────────────────────────────

// Label is a gesture class produced by a classifier.
type Label string

const (
	LabelNone      Label = ""
	LabelDraw      Label = "draw"
	LabelClear     Label = "clear"
	LabelMute      Label = "mute"
	LabelVoiceDown Label = "voicedown"
	LabelVoiceUp   Label = "voiceup"
)

// ParseLabel maps a classifier string to a Label. Unknown values map to LabelNone.
func ParseLabel(s string) Label {
	switch l := Label(s); l {
	case LabelDraw, LabelClear, LabelMute, LabelVoiceDown, LabelVoiceUp:
		return l
	default:
		return LabelNone
	}
}

// BoundingBox is a detection box in pixel coordinates, ordered as
// [yMin, xMin, yMax, xMax].
type BoundingBox struct {
	YMin float64 `json:"y_min"`
	XMin float64 `json:"x_min"`
	YMax float64 `json:"y_max"`
	XMax float64 `json:"x_max"`
}

// Detection is one classifier result for one frame.
type Detection struct {
	Label Label
	Box   *BoundingBox // nil when the classifier reports no box
}

// Control is a volume command emitted to the control surface.
// Value is 0 for mute, otherwise a delta on a 0–100 scale.
type Control struct {
	Label Label `json:"label"`
	Value int   `json:"value"`
}

// ControlFor returns the control-surface value for a confirmed label.
// Labels that do not affect volume return ok=false.
func ControlFor(l Label) (Control, bool) {
	switch l {
	case LabelMute:
		return Control{Label: l, Value: 0}, true
	case LabelVoiceDown:
		return Control{Label: l, Value: -5}, true
	case LabelVoiceUp:
		return Control{Label: l, Value: 5}, true
	}
	return Control{}, false
}

// ─────────────────────────────────────────────────────────────────────────────
// Errors
// ─────────────────────────────────────────────────────────────────────────────

// ErrorCode identifies a failure class reported to the control surface.
type ErrorCode int

const (
	CodeNone ErrorCode = iota
	CodeVideoSettings
	CodeSavePath
	CodeAudioSettings
	CodeIO
	CodeScreenshot
	CodeMux
)

func (c ErrorCode) String() string {
	switch c {
	case CodeNone:
		return "none"
	case CodeVideoSettings:
		return "invalid video settings"
	case CodeSavePath:
		return "invalid save path"
	case CodeAudioSettings:
		return "invalid audio settings"
	case CodeIO:
		return "device i/o error"
	case CodeScreenshot:
		return "screenshot failed"
	case CodeMux:
		return "mux failed"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Recorder status
// ─────────────────────────────────────────────────────────────────────────────

// State is the recorder lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRecording
	StateStopping
	StateFailedStart
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateFailedStart:
		return "failed-start"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RecorderStatus is a point-in-time snapshot of the recorder.
type RecorderStatus struct {
	State          State   `json:"state"`
	SessionID      string  `json:"sessionId,omitempty"`
	StartedAt      int64   `json:"startedAt,omitempty"` // Unix milliseconds
	Frames         int64   `json:"frames"`
	AudioChunks    int64   `json:"audioChunks"`
	RepeatedFrames int64   `json:"repeatedFrames"`
	Throttle       int     `json:"throttle"`
	Volume         float64 `json:"volume"`
	Gestures       bool    `json:"gestures"`
	AudioLevel     float64 `json:"audioLevel"` // RMS of the last raw chunk, 0–1
	MicSilent      bool    `json:"micSilent"`
}
