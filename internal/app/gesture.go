package app

import (
	"fmt"

	"go.aimuz.me/camrec/config"
	"go.aimuz.me/camrec/gesture"
	"go.aimuz.me/camrec/gesture/openai"
)

// newClassifier creates the gesture classifier for the configured provider.
func newClassifier(cfg config.Gesture) (gesture.Classifier, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		c, err := openai.New(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.TimeoutDuration(),
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown gesture provider: %s", cfg.Provider)
	}
}
