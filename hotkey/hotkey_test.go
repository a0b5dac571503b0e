package hotkey

import (
	"slices"
	"testing"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		combo   string
		want    []string
		wantErr bool
	}{
		{"ctrl+shift+r", []string{"ctrl", "shift", "r"}, false},
		{"Shift + Control + S", []string{"shift", "ctrl", "s"}, false},
		{"r+cmd", []string{"cmd", "r"}, false},
		{"command+option+g", []string{"cmd", "alt", "g"}, false},
		{"ctrl+ctrl+f9", []string{"ctrl", "f9"}, false},
		{"ctrl+shift", nil, true},
		{"ctrl+a+b", nil, true},
		{"ctrl++r", nil, true},
		{"", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.combo, func(t *testing.T) {
			got, err := ParseCombo(tt.combo)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !slices.Equal(got, tt.want) {
				t.Errorf("ParseCombo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	noop := func() {}

	tests := []struct {
		name     string
		bindings []Binding
		wantErr  bool
	}{
		{"defaults", []Binding{
			{Name: "record", Combo: DefaultRecord, Action: noop},
			{Name: "screenshot", Combo: DefaultScreenshot, Action: noop},
			{Name: "gestures", Combo: DefaultGestures, Action: noop},
		}, false},
		{"duplicate combo", []Binding{
			{Name: "record", Combo: "ctrl+shift+r", Action: noop},
			{Name: "screenshot", Combo: "shift+ctrl+R", Action: noop},
		}, true},
		{"missing action", []Binding{{Name: "record", Combo: DefaultRecord}}, true},
		{"bad combo", []Binding{{Name: "record", Combo: "ctrl", Action: noop}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.bindings...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
