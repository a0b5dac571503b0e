package app

import (
	"image"

	"go.aimuz.me/camrec/audiocapture"
	"go.aimuz.me/camrec/recorder"
	"go.aimuz.me/camrec/videocapture"
)

// SystemDevices opens real cameras through OpenCV and microphones through
// PortAudio.
type SystemDevices struct{}

// OpenVideo implements recorder.Devices.
func (SystemDevices) OpenVideo(index int) (recorder.VideoDevice, error) {
	cam, err := videocapture.Open(index)
	if err != nil {
		return nil, err
	}
	return cam, nil
}

// CreateVideoWriter implements recorder.Devices.
func (SystemDevices) CreateVideoWriter(path string, fps float64, size image.Point) (recorder.FrameWriter, error) {
	w, err := videocapture.Create(path, fps, size)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// OpenAudio implements recorder.Devices.
func (SystemDevices) OpenAudio(index, sampleRate, chunkSamples int) (recorder.AudioDevice, error) {
	s, err := audiocapture.Open(audiocapture.Config{
		Device:       index,
		SampleRate:   sampleRate,
		ChunkSamples: chunkSamples,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
