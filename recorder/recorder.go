// Package recorder records a live camera and microphone session to a single
// synchronized media file.
//
// A session runs on one worker goroutine that reads a frame and an audio
// chunk per tick, optionally classifies the frame for gesture commands,
// renders draw strokes, mirrors the frame, and writes both streams to temp
// files. A drift compensator repeats frames and chunks when ticks run long
// so the output keeps wall-clock pace. On stop the worker writes the audio
// container, releases the devices and muxes both temp files into the final
// recording.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"go.aimuz.me/camrec/drift"
	"go.aimuz.me/camrec/gesture"
	"go.aimuz.me/camrec/internal/types"
	"go.aimuz.me/camrec/media"
	"go.aimuz.me/camrec/screenshot"
)

// DefaultFPS is used when the camera does not report a frame rate.
const DefaultFPS = 30

// VolumeStep is the volume change applied by voicedown/voiceup.
const VolumeStep = 0.05

var (
	// ErrNotRecording is returned by Stop when no session is active.
	ErrNotRecording = errors.New("recorder: not recording")
	// ErrBusy is returned when settings are changed during a session.
	ErrBusy = errors.New("recorder: session active")
	// ErrNoDevices is returned by New without a device opener.
	ErrNoDevices = errors.New("recorder: no devices")
)

// Error is a recorder failure tagged with the code reported to the
// control surface.
type Error struct {
	Code types.ErrorCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the code of the first *Error in err's tree, or CodeNone.
func CodeOf(err error) types.ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return types.CodeNone
}

// Tick is what the worker produces for the control surface on every
// written frame. Frame must be treated as read-only.
type Tick struct {
	Frame   *image.RGBA
	Control *types.Control // nil when no volume command was confirmed
}

// Result describes a finished session.
type Result struct {
	SessionID      string
	Output         string // final file; empty when muxing failed
	StartedAt      time.Time
	StoppedAt      time.Time
	Frames         int64
	AudioChunks    int64
	RepeatedFrames int64
	Err            error
}

// Config holds configuration for a Recorder.
type Config struct {
	Devices    Devices
	Muxer      Muxer              // default media.FFmpeg{}
	Classifier gesture.Classifier // optional

	Settings types.Settings
	Gestures bool // gesture support enabled at start

	ConfidenceThreshold int // default gesture.DefaultConfidenceThreshold
	CooldownFrames      int // default gesture.DefaultCooldownFrames; negative also means default

	FrameBuffer int // Frames() channel capacity, default 2

	// Clock is injectable for testing; defaults to time.Now.
	Clock func() time.Time

	// OnSessionEnd is called by the worker after every finalized session.
	OnSessionEnd func(Result)
}

// Recorder owns at most one capture session at a time.
type Recorder struct {
	devices    Devices
	muxer      Muxer
	classifier gesture.Classifier
	threshold  int
	cooldown   int
	clock      func() time.Time
	onEnd      func(Result)

	volume   atomic.Uint64 // math.Float64bits
	gestures atomic.Bool

	mu        sync.Mutex
	state     types.State
	settings  types.Settings
	cur       *captureSession
	lastFrame *image.RGBA

	frames chan Tick
	errs   chan error
}

// New creates an idle recorder.
func New(cfg Config) (*Recorder, error) {
	if cfg.Devices == nil {
		return nil, ErrNoDevices
	}
	if cfg.Muxer == nil {
		cfg.Muxer = media.FFmpeg{}
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = gesture.DefaultConfidenceThreshold
	}
	if cfg.CooldownFrames < 0 {
		cfg.CooldownFrames = gesture.DefaultCooldownFrames
	}
	if cfg.FrameBuffer <= 0 {
		cfg.FrameBuffer = 2
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	r := &Recorder{
		devices:    cfg.Devices,
		muxer:      cfg.Muxer,
		classifier: cfg.Classifier,
		threshold:  cfg.ConfidenceThreshold,
		cooldown:   cfg.CooldownFrames,
		clock:      cfg.Clock,
		onEnd:      cfg.OnSessionEnd,
		settings:   cfg.Settings,
		frames:     make(chan Tick, cfg.FrameBuffer),
		errs:       make(chan error, 10),
	}
	r.SetVolume(1)
	r.gestures.Store(cfg.Gestures)
	return r, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// Start opens the devices and starts a capture session. Starting while a
// session is starting or recording does nothing. Failures leave no device
// open and are reported as *Error with a start-stage code.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != types.StateIdle && r.state != types.StateFailedStart {
		state := r.state
		r.mu.Unlock()
		slog.Debug("start ignored", "state", state)
		return nil
	}
	r.state = types.StateStarting
	settings := r.settings
	r.mu.Unlock()

	s, err := r.open(settings)
	if err != nil {
		r.setState(types.StateFailedStart)
		slog.Error("start recording", "code", int(CodeOf(err)), "error", err)
		return err
	}

	r.mu.Lock()
	r.cur = s
	r.state = types.StateRecording
	r.mu.Unlock()

	slog.Info("recording started",
		"session", s.id,
		"fps", s.fps,
		"sample_rate", s.sampleRate,
		"camera", settings.CameraIndex,
		"microphone", settings.MicrophoneIndex,
	)

	go r.run(context.WithoutCancel(ctx), s)
	return nil
}

// open acquires every session handle, releasing the ones already open when
// a later stage fails.
func (r *Recorder) open(settings types.Settings) (*captureSession, error) {
	video, err := r.devices.OpenVideo(settings.CameraIndex)
	if err != nil {
		return nil, &Error{Code: types.CodeVideoSettings, Err: fmt.Errorf("open camera %d: %w", settings.CameraIndex, err)}
	}

	fps := video.FPS()
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		fps = DefaultFPS
	}
	size := video.Size()
	if size.X <= 0 || size.Y <= 0 {
		closeQuietly("camera", video)
		return nil, &Error{Code: types.CodeVideoSettings, Err: fmt.Errorf("camera %d reports frame size %v", settings.CameraIndex, size)}
	}

	if err := checkDir(settings.SavePath); err != nil {
		closeQuietly("camera", video)
		return nil, &Error{Code: types.CodeSavePath, Err: err}
	}

	id := uuid.NewString()
	videoName, audioName := media.TempNames(id)
	videoPath := filepath.Join(settings.SavePath, videoName)
	audioPath := filepath.Join(settings.SavePath, audioName)

	writer, err := r.devices.CreateVideoWriter(videoPath, fps, size)
	if err != nil {
		closeQuietly("camera", video)
		removeQuietly(videoPath)
		return nil, &Error{Code: types.CodeSavePath, Err: fmt.Errorf("create video writer: %w", err)}
	}

	sampleRate := int(fps * ChunkSamples)
	audio, err := r.devices.OpenAudio(settings.MicrophoneIndex, sampleRate, ChunkSamples)
	if err != nil {
		closeQuietly("video writer", writer)
		closeQuietly("camera", video)
		removeQuietly(videoPath)
		return nil, &Error{Code: types.CodeAudioSettings, Err: fmt.Errorf("open microphone %d at %d Hz: %w", settings.MicrophoneIndex, sampleRate, err)}
	}

	return &captureSession{
		id:         id,
		settings:   settings,
		startedAt:  r.clock(),
		fps:        fps,
		sampleRate: sampleRate,
		videoPath:  videoPath,
		audioPath:  audioPath,
		video:      video,
		writer:     writer,
		audio:      audio,
		filter:     gesture.NewFilter(r.threshold, r.cooldown),
		drift:      drift.New(drift.PeriodForFPS(fps)),
		buffer:     NewAudioBuffer(sampleRate),
		meter:      NewLevelMeter(DefaultSilenceThreshold, DefaultSilenceDuration),
		chunk:      make([]int16, ChunkSamples),
		done:       make(chan struct{}),
	}, nil
}

// Stop requests the active session to stop and waits until it has been
// finalized, which includes the mux and may take seconds.
func (r *Recorder) Stop() (Result, error) {
	r.mu.Lock()
	s := r.cur
	if s == nil || (r.state != types.StateRecording && r.state != types.StateStopping) {
		r.mu.Unlock()
		return Result{}, ErrNotRecording
	}
	r.state = types.StateStopping
	r.mu.Unlock()

	s.stop.Store(true)
	<-s.done
	return s.result, s.result.Err
}

// run is the capture worker.
func (r *Recorder) run(ctx context.Context, s *captureSession) {
	defer close(s.done)

	loopErr := r.loop(ctx, s)
	if loopErr != nil {
		slog.Error("recording interrupted", "session", s.id, "error", loopErr)
	}
	r.setState(types.StateStopping)

	res := r.finalize(ctx, s, loopErr)
	s.reset()

	r.mu.Lock()
	r.cur = nil
	r.lastFrame = nil
	r.state = types.StateIdle
	r.mu.Unlock()

	s.result = res
	if res.Err != nil {
		r.sendError(res.Err)
	}
	slog.Info("recording stopped",
		"session", s.id,
		"output", res.Output,
		"frames", res.Frames,
		"audio_chunks", res.AudioChunks,
		"repeated", res.RepeatedFrames,
		"duration", res.StoppedAt.Sub(res.StartedAt),
	)

	if r.onEnd != nil {
		r.onEnd(res)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Control surface
// ─────────────────────────────────────────────────────────────────────────────

// Status returns a snapshot of the recorder.
func (r *Recorder) Status() types.RecorderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := types.RecorderStatus{
		State:    r.state,
		Volume:   r.Volume(),
		Gestures: r.gestures.Load(),
		Throttle: drift.DefaultMinThrottle,
	}
	if s := r.cur; s != nil {
		st.SessionID = s.id
		st.StartedAt = s.startedAt.UnixMilli()
		st.Frames = s.frames.Load()
		st.AudioChunks = s.chunks.Load()
		st.RepeatedFrames = s.repeats.Load()
		st.Throttle = int(s.throttle.Load())
		st.AudioLevel = s.meter.Level()
		st.MicSilent = s.meter.Silent()
	}
	return st
}

// Settings returns the settings used by the next session.
func (r *Recorder) Settings() types.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// SetSettings replaces the settings. It fails while a session is active.
func (r *Recorder) SetSettings(s types.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != nil || r.state == types.StateStarting {
		return ErrBusy
	}
	r.settings = s
	return nil
}

// Volume returns the current volume multiplier in [0, 1].
func (r *Recorder) Volume() float64 {
	return math.Float64frombits(r.volume.Load())
}

// SetVolume sets the volume multiplier, clamped to [0, 1]. It may be called
// at any time; each audio chunk uses one consistent value.
func (r *Recorder) SetVolume(v float64) {
	v = math.Max(0, math.Min(1, v))
	r.volume.Store(math.Float64bits(v))
}

// SetGestureSupport enables or disables gesture classification.
func (r *Recorder) SetGestureSupport(on bool) {
	r.gestures.Store(on)
}

// GestureSupport reports whether gesture classification is enabled.
func (r *Recorder) GestureSupport() bool {
	return r.gestures.Load()
}

// Screenshot writes the most recent recorded frame under the screenshot
// path. It returns screenshot.ErrNotAvailable when nothing is recording.
func (r *Recorder) Screenshot(at time.Time) (string, error) {
	r.mu.Lock()
	frame := r.lastFrame
	dir := r.settings.ScreenshotPath
	if r.cur != nil {
		dir = r.cur.settings.ScreenshotPath
	}
	r.mu.Unlock()

	if frame == nil {
		return "", screenshot.ErrNotAvailable
	}
	path, err := screenshot.Save(frame, dir, at)
	if err != nil {
		return "", &Error{Code: types.CodeScreenshot, Err: err}
	}
	slog.Info("screenshot saved", "path", path)
	return path, nil
}

// Frames returns the channel of produced frames. Ticks are dropped when
// nobody keeps up.
func (r *Recorder) Frames() <-chan Tick {
	return r.frames
}

// Errors returns the channel of session errors (I/O, mux).
func (r *Recorder) Errors() <-chan error {
	return r.errs
}

func (r *Recorder) setState(s types.State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Recorder) setLastFrame(f *image.RGBA) {
	r.mu.Lock()
	r.lastFrame = f
	r.mu.Unlock()
}

// emit sends a tick to the channel (non-blocking).
func (r *Recorder) emit(t Tick) {
	select {
	case r.frames <- t:
	default:
		// Nobody listening, skip
	}
}

// sendError sends an error to the channel (non-blocking).
func (r *Recorder) sendError(err error) {
	select {
	case r.errs <- err:
	default:
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func checkDir(dir string) error {
	if dir == "" {
		return errors.New("save path not set")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat save path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("save path %q is not a directory", dir)
	}
	return nil
}

func closeQuietly(what string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		slog.Warn("close "+what, "error", err)
	}
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("remove temp file", "path", path, "error", err)
	}
}
