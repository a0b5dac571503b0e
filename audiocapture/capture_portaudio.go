//go:build !noportaudio

package audiocapture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Stream is an open PortAudio input stream.
type Stream struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []int16
	closed bool
}

// Open initializes PortAudio and starts an input stream on the configured
// device.
func Open(cfg Config) (*Stream, error) {
	cfg.applyDefaults()

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	s, err := open(cfg)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}
	return s, nil
}

func open(cfg Config) (*Stream, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if cfg.Device < 0 || cfg.Device >= len(devs) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoDevice, cfg.Device, len(devs))
	}
	dev := devs[cfg.Device]
	if dev.MaxInputChannels < 1 {
		return nil, fmt.Errorf("%w: %q has no inputs", ErrNoDevice, dev.Name)
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(cfg.SampleRate)
	params.FramesPerBuffer = cfg.ChunkSamples

	buf := make([]int16, cfg.ChunkSamples)
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("open stream on %q at %d Hz: %w", dev.Name, cfg.SampleRate, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start stream: %w", err)
	}
	return &Stream{stream: stream, buf: buf}, nil
}

// Read blocks until len(out) samples have been captured.
func (s *Stream) Read(out []int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return readFull(out, s.buf, func() error {
		err := s.stream.Read()
		if errors.Is(err, portaudio.InputOverflowed) {
			return errOverflow
		}
		return err
	})
}

// Close stops the stream and releases PortAudio.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	return errors.Join(
		s.stream.Stop(),
		s.stream.Close(),
		portaudio.Terminate(),
	)
}

// Devices lists the input devices.
func Devices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var out []Device
	for i, d := range devs {
		if d.MaxInputChannels < 1 {
			continue
		}
		host := ""
		if d.HostApi != nil {
			host = d.HostApi.Name
		}
		out = append(out, Device{
			Index:             i,
			Name:              d.Name,
			HostAPI:           host,
			InputChannels:     d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		})
	}
	return out, nil
}
