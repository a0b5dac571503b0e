package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrFFmpegNotFound is returned when no ffmpeg binary is available.
var ErrFFmpegNotFound = errors.New("media: ffmpeg not found")

// FFmpeg muxes a raw video file and a WAV file into one container by
// invoking the ffmpeg binary. The video stream is copied; audio is encoded
// to AAC.
type FFmpeg struct {
	// Binary is the ffmpeg executable. Empty means "ffmpeg" on PATH.
	Binary string
	// AudioCodec defaults to "aac".
	AudioCodec string
}

// Mux combines video and audio into out, overwriting out if it exists.
func (m FFmpeg) Mux(ctx context.Context, video, audio, out string) error {
	if video == "" || audio == "" || out == "" {
		return ErrEmptyPath
	}

	cmd, err := m.command(video, audio, out)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("ffmpeg mux", "args", strings.Join(cmd.Args[1:], " "))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
		}
		return nil
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}

// command builds the ffmpeg invocation without running it.
func (m FFmpeg) command(video, audio, out string) (*exec.Cmd, error) {
	codec := m.AudioCodec
	if codec == "" {
		codec = "aac"
	}

	compiled := ffmpeg.Output(
		[]*ffmpeg.Stream{ffmpeg.Input(video), ffmpeg.Input(audio)},
		out,
		ffmpeg.KwArgs{"c:v": "copy", "c:a": codec},
	).OverWriteOutput().Compile()

	bin := m.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	cmd := exec.Command(path, compiled.Args[1:]...)
	cmd.Args[0] = bin
	return cmd, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
