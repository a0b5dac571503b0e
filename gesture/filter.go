package gesture

import "go.aimuz.me/camrec/internal/types"

// Filter debounces classifier output.
//
// A label is confirmed after Threshold consecutive identical observations.
// Confirming anything other than "draw" starts a cooldown of Cooldown
// observations during which every label is suppressed, and forgets the
// current prediction so the next command has to accumulate again. "draw"
// keeps confirming on every further identical observation so strokes can be
// drawn continuously.
//
// Filter is not safe for concurrent use; the capture worker owns it.
type Filter struct {
	threshold int
	cooldown  int

	current    types.Label
	hasCurrent bool
	confidence int
	remaining  int // cooldown observations left
}

// NewFilter creates a filter. Non-positive arguments use the defaults.
func NewFilter(threshold, cooldown int) *Filter {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if cooldown < 0 {
		cooldown = DefaultCooldownFrames
	}
	return &Filter{threshold: threshold, cooldown: cooldown}
}

// Observe feeds one classification attempt and returns the confirmed label,
// or LabelNone when nothing is confirmed.
func (f *Filter) Observe(label types.Label) types.Label {
	if f.remaining > 0 {
		f.remaining--
		return types.LabelNone
	}

	if !f.hasCurrent || label != f.current {
		f.current = label
		f.hasCurrent = true
		f.confidence = f.threshold - 1
	} else {
		f.confidence--
	}

	if f.confidence > 0 || label == types.LabelNone {
		return types.LabelNone
	}

	if label != types.LabelDraw {
		f.remaining = f.cooldown
		f.current = types.LabelNone
		f.hasCurrent = false
	}
	return label
}

// InCooldown reports whether commands are currently suppressed.
func (f *Filter) InCooldown() bool {
	return f.remaining > 0
}

// Reset restores the initial state.
func (f *Filter) Reset() {
	f.current = types.LabelNone
	f.hasCurrent = false
	f.confidence = 0
	f.remaining = 0
}
