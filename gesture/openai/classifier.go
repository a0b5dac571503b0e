// Package openai implements gesture.Classifier on top of an OpenAI-compatible
// vision model.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"go.aimuz.me/camrec/internal/types"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You classify hand gestures in webcam frames.
Answer with a single JSON object and nothing else:
{"label": "<draw|clear|mute|voicedown|voiceup|none>", "box": [yMin, xMin, yMax, xMax]}
"box" is the hand bounding box in pixel coordinates of the given image, or null when no hand is visible.
draw: index finger pointing up. clear: open palm. mute: finger on lips. voicedown: thumb down. voiceup: thumb up.`

// Config holds configuration for the classifier.
type Config struct {
	APIKey  string
	BaseURL string // Optional, for OpenAI-compatible endpoints
	Model   string
	Timeout time.Duration // Per-request timeout, default 2s
	Quality int           // JPEG quality of the uploaded frame, default 70
}

// Classifier sends frames to a chat-completions vision model.
type Classifier struct {
	client  openai.Client
	model   string
	timeout time.Duration
	quality int
}

// New creates a Classifier.
func New(cfg Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Quality == 0 {
		cfg.Quality = 70
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Classifier{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		quality: cfg.Quality,
	}, nil
}

// Classify implements gesture.Classifier.
func (c *Classifier) Classify(ctx context.Context, frame image.Image) (types.Detection, error) {
	dataURL, err := encodeFrame(frame, c.quality)
	if err != nil {
		return types.Detection{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b := frame.Bounds()
	prompt := fmt.Sprintf("Image size: %dx%d pixels.", b.Dx(), b.Dy())

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    dataURL,
					Detail: "low",
				}),
			}),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return types.Detection{}, fmt.Errorf("classify frame: %w", err)
	}
	if len(resp.Choices) == 0 {
		return types.Detection{}, errors.New("classify frame: no choices")
	}

	det, err := parseDetection(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Debug("unparseable classifier reply", "content", resp.Choices[0].Message.Content)
		return types.Detection{}, err
	}
	return det, nil
}

func encodeFrame(frame image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type reply struct {
	Label string     `json:"label"`
	Box   *[]float64 `json:"box"`
}

// parseDetection decodes the model reply. Code fences around the JSON are
// tolerated.
func parseDetection(content string) (types.Detection, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var r reply
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return types.Detection{}, fmt.Errorf("decode classifier reply: %w", err)
	}

	det := types.Detection{Label: types.ParseLabel(strings.ToLower(strings.TrimSpace(r.Label)))}
	if r.Box != nil && len(*r.Box) == 4 {
		v := *r.Box
		det.Box = &types.BoundingBox{YMin: v[0], XMin: v[1], YMax: v[2], XMax: v[3]}
	}
	return det, nil
}
