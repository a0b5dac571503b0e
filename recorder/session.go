package recorder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.aimuz.me/camrec/drift"
	"go.aimuz.me/camrec/gesture"
	"go.aimuz.me/camrec/internal/types"
	"go.aimuz.me/camrec/media"
	"go.aimuz.me/camrec/overlay"
)

// captureSession is the state of one recording. Everything except the
// atomic counters and the stop flag is owned by the worker.
type captureSession struct {
	id         string
	settings   types.Settings
	startedAt  time.Time
	fps        float64
	sampleRate int
	videoPath  string
	audioPath  string

	video  VideoDevice
	writer FrameWriter
	audio  AudioDevice

	filter    *gesture.Filter
	stroke    overlay.Stroke
	drift     *drift.Compensator
	buffer    *AudioBuffer
	meter     *LevelMeter
	chunk     []int16
	countdown int       // frames until the next classification
	tickStart time.Time // end of the previous tick

	frames   atomic.Int64
	chunks   atomic.Int64
	repeats  atomic.Int64
	throttle atomic.Int32

	stop   atomic.Bool
	done   chan struct{}
	result Result
}

// reset returns gesture, overlay, timing and audio state to initial values.
func (s *captureSession) reset() {
	s.filter.Reset()
	s.stroke.Clear()
	s.drift.Reset()
	s.buffer.Clear()
	s.meter.Reset()
	s.countdown = 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Acquisition loop
// ─────────────────────────────────────────────────────────────────────────────

// loop runs ticks until a stop is requested or a device fails.
func (r *Recorder) loop(ctx context.Context, s *captureSession) error {
	s.throttle.Store(int32(s.drift.Throttle()))
	s.tickStart = r.clock()
	for !s.stop.Load() {
		if err := r.tick(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// tick performs one read/process/write cycle. Its elapsed time runs from
// the end of the previous tick, so time spent writing repeats is owed by
// the next one.
func (r *Recorder) tick(ctx context.Context, s *captureSession) error {
	start := s.tickStart

	raw, err := s.video.Read()
	if err != nil {
		return &Error{Code: types.CodeIO, Err: fmt.Errorf("read frame: %w", err)}
	}
	if raw == nil {
		// No frame this tick. The matching chunk is drained and dropped so
		// the input stream does not overflow.
		if err := s.audio.Read(s.chunk); err != nil {
			return &Error{Code: types.CodeIO, Err: fmt.Errorf("read audio: %w", err)}
		}
		s.tickStart = r.clock()
		return nil
	}
	if err := s.audio.Read(s.chunk); err != nil {
		return &Error{Code: types.CodeIO, Err: fmt.Errorf("read audio: %w", err)}
	}
	if s.meter.Process(s.chunk, start) {
		slog.Warn("microphone input is silent", "session", s.id, "microphone", s.settings.MicrophoneIndex)
	}

	frame := overlay.ToRGBA(raw)
	control := r.classify(ctx, s, frame)

	s.stroke.Render(frame)
	overlay.Mirror(frame)
	r.setLastFrame(frame)

	s.buffer.Append(s.chunk, r.Volume())
	s.chunks.Add(1)
	if err := s.writer.Write(frame); err != nil {
		return &Error{Code: types.CodeIO, Err: fmt.Errorf("write frame: %w", err)}
	}
	s.frames.Add(1)

	end := r.clock()
	owed := s.drift.Tick(end.Sub(start))
	s.tickStart = end
	for range owed {
		if err := s.writer.Write(frame); err != nil {
			return &Error{Code: types.CodeIO, Err: fmt.Errorf("write repeated frame: %w", err)}
		}
		s.frames.Add(1)
		if err := s.audio.Read(s.chunk); err != nil {
			return &Error{Code: types.CodeIO, Err: fmt.Errorf("read audio: %w", err)}
		}
		s.buffer.Append(s.chunk, r.Volume())
		s.chunks.Add(1)
		s.repeats.Add(1)
	}
	if owed > 0 {
		s.throttle.Store(int32(s.drift.Throttle()))
	}

	r.emit(Tick{Frame: frame, Control: control})
	return nil
}

// classify runs the classifier when gestures are on and the throttle
// countdown has elapsed, and applies the confirmed command.
func (r *Recorder) classify(ctx context.Context, s *captureSession, frame image.Image) *types.Control {
	if r.classifier == nil || !r.gestures.Load() {
		return nil
	}
	if s.countdown > 0 {
		s.countdown--
		return nil
	}
	s.countdown = s.drift.Throttle() - 1

	det, err := r.classifier.Classify(ctx, frame)
	if err != nil {
		slog.Warn("classify frame", "session", s.id, "error", err)
		det = types.Detection{}
	}

	label := s.filter.Observe(det.Label)
	switch label {
	case types.LabelNone:
		return nil
	case types.LabelDraw:
		if det.Box != nil {
			s.stroke.Append(overlay.Anchor(*det.Box), r.clock())
		}
		return nil
	case types.LabelClear:
		s.stroke.Clear()
		return nil
	}

	c, ok := types.ControlFor(label)
	if !ok {
		return nil
	}
	r.applyControl(c)
	slog.Debug("gesture command", "session", s.id, "label", label, "volume", r.Volume())
	return &c
}

// applyControl applies a confirmed volume command.
func (r *Recorder) applyControl(c types.Control) {
	switch c.Label {
	case types.LabelMute:
		r.SetVolume(0)
	case types.LabelVoiceDown:
		r.SetVolume(r.Volume() - VolumeStep)
	case types.LabelVoiceUp:
		r.SetVolume(r.Volume() + VolumeStep)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Finalizer
// ─────────────────────────────────────────────────────────────────────────────

// finalize writes the audio container, releases every handle and muxes the
// temp files into the final recording. Every step is attempted regardless
// of earlier failures. The temp files are kept when the mux fails.
func (r *Recorder) finalize(ctx context.Context, s *captureSession, cause error) Result {
	res := Result{
		SessionID:      s.id,
		StartedAt:      s.startedAt,
		Frames:         s.frames.Load(),
		AudioChunks:    s.chunks.Load(),
		RepeatedFrames: s.repeats.Load(),
	}

	var errs []error
	if cause != nil {
		errs = append(errs, cause)
	}

	if err := s.writer.Close(); err != nil {
		errs = append(errs, &Error{Code: types.CodeIO, Err: fmt.Errorf("close video writer: %w", err)})
	}
	if err := s.video.Close(); err != nil {
		errs = append(errs, &Error{Code: types.CodeIO, Err: fmt.Errorf("close camera: %w", err)})
	}

	wavErr := media.WriteWAV(s.audioPath, s.sampleRate, s.buffer.Chunks())
	s.buffer.Clear()

	if err := s.audio.Close(); err != nil {
		errs = append(errs, &Error{Code: types.CodeIO, Err: fmt.Errorf("close microphone: %w", err)})
	}

	res.StoppedAt = r.clock()
	out := filepath.Join(s.settings.SavePath, media.RecordingName(res.StoppedAt))

	var muxErr error
	if wavErr != nil {
		muxErr = fmt.Errorf("write audio: %w", wavErr)
	} else {
		muxErr = r.muxer.Mux(ctx, s.videoPath, s.audioPath, out)
	}

	if muxErr != nil {
		slog.Error("mux recording, keeping temp files",
			"session", s.id,
			"video", s.videoPath,
			"audio", s.audioPath,
			"error", muxErr,
		)
		errs = append(errs, &Error{Code: types.CodeMux, Err: muxErr})
	} else {
		res.Output = out
		removeQuietly(s.videoPath)
		removeQuietly(s.audioPath)
	}

	res.Err = errors.Join(errs...)
	return res
}
