package app

// Event names for control-surface communication.
const (
	EventRecordingState = "recording-state"
	EventRecordingError = "recording-error"
	EventControl        = "gesture-control"
	EventScreenshot     = "screenshot-saved"
	EventSessionSaved   = "session-saved"
	EventGestures       = "gesture-support"
)

// ErrorEvent reports a recorder failure with its control-surface code.
type ErrorEvent struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ControlEvent carries a confirmed volume command.
// Value is 0 for mute, otherwise a delta on a 0–100 scale.
type ControlEvent struct {
	Label  string  `json:"label"`
	Value  int     `json:"value"`
	Volume float64 `json:"volume"`
}
