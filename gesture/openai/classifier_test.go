package openai

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"go.aimuz.me/camrec/internal/types"
)

func TestParseDetection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		wantLbl types.Label
		wantBox *types.BoundingBox
	}{
		{
			name:    "label with box",
			content: `{"label": "draw", "box": [10, 20, 110, 80]}`,
			wantLbl: types.LabelDraw,
			wantBox: &types.BoundingBox{YMin: 10, XMin: 20, YMax: 110, XMax: 80},
		},
		{
			name:    "fenced reply",
			content: "```json\n{\"label\": \"mute\", \"box\": null}\n```",
			wantLbl: types.LabelMute,
		},
		{
			name:    "upper case label",
			content: `{"label": "VoiceUp"}`,
			wantLbl: types.LabelVoiceUp,
		},
		{
			name:    "unknown label maps to none",
			content: `{"label": "wave", "box": [1, 2, 3, 4]}`,
			wantLbl: types.LabelNone,
			wantBox: &types.BoundingBox{YMin: 1, XMin: 2, YMax: 3, XMax: 4},
		},
		{
			name:    "short box ignored",
			content: `{"label": "clear", "box": [1, 2]}`,
			wantLbl: types.LabelClear,
		},
		{
			name:    "not json",
			content: "I see a thumbs up",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, err := parseDetection(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if det.Label != tt.wantLbl {
				t.Errorf("Label = %q, want %q", det.Label, tt.wantLbl)
			}
			switch {
			case tt.wantBox == nil && det.Box != nil:
				t.Errorf("Box = %+v, want nil", *det.Box)
			case tt.wantBox != nil && det.Box == nil:
				t.Errorf("Box = nil, want %+v", *tt.wantBox)
			case tt.wantBox != nil && *det.Box != *tt.wantBox:
				t.Errorf("Box = %+v, want %+v", *det.Box, *tt.wantBox)
			}
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.White)

	url, err := encodeFrame(img, 50)
	if err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("unexpected data url prefix: %.32s", url)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without API key")
	}

	c, err := New(Config{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.model != DefaultModel {
		t.Errorf("model = %q, want %q", c.model, DefaultModel)
	}
}
