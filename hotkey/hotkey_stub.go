//go:build nohook

package hotkey

// Manager is inert in builds without global hook support.
type Manager struct{}

// New validates bindings.
func New(bindings ...Binding) (*Manager, error) {
	if err := validate(bindings); err != nil {
		return nil, err
	}
	return &Manager{}, nil
}

// Start returns ErrUnsupported.
func (*Manager) Start() error { return ErrUnsupported }

// Stop does nothing.
func (*Manager) Stop() {}
