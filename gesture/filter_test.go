package gesture

import (
	"testing"

	"go.aimuz.me/camrec/internal/types"
)

func observeAll(f *Filter, labels ...types.Label) []types.Label {
	out := make([]types.Label, len(labels))
	for i, l := range labels {
		out[i] = f.Observe(l)
	}
	return out
}

func TestFilter_RequiresConsecutiveLabels(t *testing.T) {
	tests := []struct {
		name   string
		labels []types.Label
		want   []types.Label
	}{
		{
			name:   "single observation never confirms",
			labels: []types.Label{types.LabelMute},
			want:   []types.Label{types.LabelNone},
		},
		{
			name:   "two identical confirm on the second",
			labels: []types.Label{types.LabelVoiceUp, types.LabelVoiceUp},
			want:   []types.Label{types.LabelNone, types.LabelVoiceUp},
		},
		{
			name:   "differing label resets the counter",
			labels: []types.Label{types.LabelMute, types.LabelClear, types.LabelMute},
			want:   []types.Label{types.LabelNone, types.LabelNone, types.LabelNone},
		},
		{
			name:   "none interrupts a run",
			labels: []types.Label{types.LabelClear, types.LabelNone, types.LabelClear, types.LabelClear},
			want:   []types.Label{types.LabelNone, types.LabelNone, types.LabelNone, types.LabelClear},
		},
		{
			name:   "repeated none confirms nothing",
			labels: []types.Label{types.LabelNone, types.LabelNone, types.LabelNone},
			want:   []types.Label{types.LabelNone, types.LabelNone, types.LabelNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(DefaultConfidenceThreshold, DefaultCooldownFrames)
			got := observeAll(f, tt.labels...)
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("observation %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilter_TenMutesConfirmOnce(t *testing.T) {
	f := NewFilter(2, 60)

	confirmed := 0
	for i := 0; i < 10; i++ {
		if got := f.Observe(types.LabelMute); got == types.LabelMute {
			confirmed++
			if i != 1 {
				t.Errorf("mute confirmed at observation %d, want 1", i)
			}
		}
	}
	if confirmed != 1 {
		t.Fatalf("confirmed %d mute commands, want 1", confirmed)
	}
}

func TestFilter_CooldownLength(t *testing.T) {
	const cooldown = 60
	f := NewFilter(2, cooldown)

	if got := observeAll(f, types.LabelVoiceDown, types.LabelVoiceDown); got[1] != types.LabelVoiceDown {
		t.Fatalf("voicedown not confirmed: %v", got)
	}

	// Every attempt inside the cooldown is suppressed, whatever the label.
	for i := 0; i < cooldown; i++ {
		if !f.InCooldown() {
			t.Fatalf("cooldown ended after %d attempts, want %d", i, cooldown)
		}
		if got := f.Observe(types.LabelVoiceUp); got != types.LabelNone {
			t.Fatalf("attempt %d inside cooldown confirmed %q", i, got)
		}
	}
	if f.InCooldown() {
		t.Fatal("still in cooldown after cooldown attempts")
	}

	// The prediction was cleared, so a fresh run of threshold labels is needed.
	if got := f.Observe(types.LabelVoiceUp); got != types.LabelNone {
		t.Fatalf("first post-cooldown attempt confirmed %q", got)
	}
	if got := f.Observe(types.LabelVoiceUp); got != types.LabelVoiceUp {
		t.Fatalf("second post-cooldown attempt = %q, want voiceup", got)
	}
}

func TestFilter_DrawIsContinuous(t *testing.T) {
	f := NewFilter(2, 60)

	got := observeAll(f, types.LabelDraw, types.LabelDraw, types.LabelDraw, types.LabelDraw)
	want := []types.Label{types.LabelNone, types.LabelDraw, types.LabelDraw, types.LabelDraw}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("observation %d = %q, want %q", i, got[i], want[i])
		}
	}
	if f.InCooldown() {
		t.Error("draw must not start a cooldown")
	}

	// Switching away from draw needs a fresh run.
	if got := f.Observe(types.LabelClear); got != types.LabelNone {
		t.Errorf("clear confirmed after a single observation")
	}
}

func TestFilter_Reset(t *testing.T) {
	f := NewFilter(2, 5)
	observeAll(f, types.LabelMute, types.LabelMute)
	if !f.InCooldown() {
		t.Fatal("expected cooldown after mute")
	}

	f.Reset()
	if f.InCooldown() {
		t.Error("Reset did not clear the cooldown")
	}
	if got := f.Observe(types.LabelMute); got != types.LabelNone {
		t.Errorf("Reset did not clear the confidence counter, got %q", got)
	}
}

func TestNewFilter_Defaults(t *testing.T) {
	f := NewFilter(0, -1)
	if f.threshold != DefaultConfidenceThreshold {
		t.Errorf("threshold = %d, want %d", f.threshold, DefaultConfidenceThreshold)
	}
	if f.cooldown != DefaultCooldownFrames {
		t.Errorf("cooldown = %d, want %d", f.cooldown, DefaultCooldownFrames)
	}
}
