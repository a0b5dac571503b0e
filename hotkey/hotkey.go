// Package hotkey binds global keyboard shortcuts to recorder actions.
package hotkey

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrRunning is returned by Start when the listener is already active.
	ErrRunning = errors.New("hotkey: already running")
	// ErrUnsupported is returned in builds without global hook support.
	ErrUnsupported = errors.New("hotkey: not supported in this build")
)

// Default combos.
const (
	DefaultRecord     = "ctrl+shift+r"
	DefaultScreenshot = "ctrl+shift+s"
	DefaultGestures   = "ctrl+shift+g"
)

var modifiers = []string{"ctrl", "shift", "alt", "cmd"}

// Binding maps a key combo such as "ctrl+shift+r" to an action.
// Actions run on the listener goroutine and must return quickly.
type Binding struct {
	Name   string
	Combo  string
	Action func()
}

// ParseCombo splits a combo into the key names understood by the hook,
// modifiers first. Exactly one non-modifier key is required.
func ParseCombo(combo string) ([]string, error) {
	var mods, keys []string
	for _, part := range strings.Split(combo, "+") {
		k := strings.ToLower(strings.TrimSpace(part))
		switch k {
		case "":
			return nil, fmt.Errorf("hotkey: empty key in %q", combo)
		case "control":
			k = "ctrl"
		case "command", "super", "meta":
			k = "cmd"
		case "option":
			k = "alt"
		}
		if slices.Contains(modifiers, k) {
			if !slices.Contains(mods, k) {
				mods = append(mods, k)
			}
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) != 1 {
		return nil, fmt.Errorf("hotkey: %q must contain exactly one non-modifier key", combo)
	}
	return append(mods, keys[0]), nil
}

func validate(bindings []Binding) error {
	seen := make(map[string]string)
	for _, b := range bindings {
		if b.Action == nil {
			return fmt.Errorf("hotkey: %s has no action", b.Name)
		}
		keys, err := ParseCombo(b.Combo)
		if err != nil {
			return err
		}
		id := strings.Join(sorted(keys), "+")
		if other, ok := seen[id]; ok {
			return fmt.Errorf("hotkey: %s and %s share %q", other, b.Name, b.Combo)
		}
		seen[id] = b.Name
	}
	return nil
}

func sorted(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}
