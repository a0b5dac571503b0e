package media

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV format of the session audio: 16-bit signed mono PCM.
const (
	wavBitDepth    = 16
	wavChannels    = 1
	wavFormatPCM   = 1
	wavWriteFrames = 64 * 1024
)

// WriteWAV writes chunks, in order, to a mono 16-bit WAV file at path.
// The file holds exactly the sum of the chunk lengths in samples.
func WriteWAV(path string, sampleRate int, chunks [][]int16) (err error) {
	if path == "" {
		return ErrEmptyPath
	}
	if sampleRate <= 0 {
		return fmt.Errorf("media: invalid sample rate %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close wav: %w", cerr)
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, wavBitDepth, wavChannels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: wavChannels, SampleRate: sampleRate},
		SourceBitDepth: wavBitDepth,
		Data:           make([]int, 0, wavWriteFrames),
	}

	written := false
	flush := func() error {
		if len(buf.Data) == 0 && written {
			return nil
		}
		written = true
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
		buf.Data = buf.Data[:0]
		return nil
	}

	for _, chunk := range chunks {
		for _, s := range chunk {
			buf.Data = append(buf.Data, int(s))
		}
		if len(buf.Data) >= wavWriteFrames {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	// Always flushed once so an empty session still gets a header.
	if err := flush(); err != nil {
		return err
	}

	// Close patches the RIFF and data chunk sizes.
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
