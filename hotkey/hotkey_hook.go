//go:build !nohook

package hotkey

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// Manager runs the global keyboard hook. Only one Manager may run per
// process.
type Manager struct {
	mu       sync.Mutex
	bindings []Binding
	running  bool
	done     chan struct{}
}

// New validates bindings and returns a stopped manager.
func New(bindings ...Binding) (*Manager, error) {
	if err := validate(bindings); err != nil {
		return nil, err
	}
	return &Manager{bindings: bindings}, nil
}

// Start registers the bindings and starts listening.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrRunning
	}

	for _, b := range m.bindings {
		keys, _ := ParseCombo(b.Combo)
		action, name := b.Action, b.Name
		hook.Register(hook.KeyDown, keys, func(hook.Event) {
			slog.Debug("hotkey", "name", name)
			action()
		})
	}

	events := hook.Start()
	m.done = make(chan struct{})
	m.running = true

	go func(done chan struct{}) {
		defer close(done)
		<-hook.Process(events)
	}(m.done)

	slog.Info("hotkeys registered", "count", len(m.bindings))
	return nil
}

// Stop ends the hook and waits for the listener to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	hook.End()
	<-m.done
	m.running = false
}
