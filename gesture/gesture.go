// Package gesture turns noisy per-frame hand-gesture predictions into
// discrete commands.
package gesture

import (
	"context"
	"image"

	"go.aimuz.me/camrec/internal/types"
)

// Default filter parameters.
const (
	DefaultConfidenceThreshold = 2
	DefaultCooldownFrames      = 60
)

// Classifier is the external inference provider.
// Implementations must be safe to call from the capture worker and should
// return promptly; the worker blocks on Classify.
type Classifier interface {
	// Classify inspects one raw frame. A zero Detection means "no gesture".
	Classify(ctx context.Context, frame image.Image) (types.Detection, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, frame image.Image) (types.Detection, error)

// Classify calls f(ctx, frame).
func (f ClassifierFunc) Classify(ctx context.Context, frame image.Image) (types.Detection, error) {
	return f(ctx, frame)
}
