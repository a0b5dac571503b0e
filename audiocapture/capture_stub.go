//go:build noportaudio

package audiocapture

// Stream is unavailable in builds without PortAudio.
type Stream struct{}

// Open returns ErrUnsupported in builds without PortAudio.
func Open(Config) (*Stream, error) {
	return nil, ErrUnsupported
}

// Read returns ErrUnsupported.
func (*Stream) Read([]int16) error { return ErrUnsupported }

// Close does nothing.
func (*Stream) Close() error { return nil }

// Devices returns ErrUnsupported in builds without PortAudio.
func Devices() ([]Device, error) {
	return nil, ErrUnsupported
}
