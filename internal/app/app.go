// Package app wires configuration, capture devices, the recorder, the
// session catalog and global hotkeys into one service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.aimuz.me/camrec/catalog"
	"go.aimuz.me/camrec/config"
	"go.aimuz.me/camrec/gesture"
	"go.aimuz.me/camrec/hotkey"
	"go.aimuz.me/camrec/internal/types"
	"go.aimuz.me/camrec/media"
	"go.aimuz.me/camrec/recorder"
)

// Options overrides the service's collaborators. Zero values select the
// real implementations.
type Options struct {
	Devices    recorder.Devices   // default SystemDevices
	Muxer      recorder.Muxer     // default ffmpeg from the config
	Classifier gesture.Classifier // default built from config.Gesture
	Catalog    *catalog.Store     // default opened at the config's catalog path
	Emit       func(name string, data any)
	Clock      func() time.Time
}

// Service provides the recorder's control surface.
// This struct focuses on orchestration; capture logic lives in recorder.
type Service struct {
	cfg     *config.Config
	opts    Options
	catalog *catalog.Store
	hotkey  *hotkey.Manager
	rec     *recorder.Recorder

	cancel context.CancelFunc
	wg     sync.WaitGroup

	version string
}

// New creates a new Service. Call Init before use.
func New(version string, cfg *config.Config, opts Options) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{cfg: cfg, opts: opts, version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Init opens the catalog, builds the recorder and starts forwarding its
// events. Hotkeys are started when enabled in the config.
func (s *Service) Init(ctx context.Context) error {
	if err := s.setupCatalog(); err != nil {
		return err
	}
	if err := s.setupRecorder(); err != nil {
		s.closeCatalog()
		return err
	}

	fctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Go(func() {
		forwardEvents(fctx, s.rec, s.emit, s.rec.Volume)
	})

	if s.cfg.Hotkeys.Enabled {
		s.setupHotkey(ctx)
	}
	return nil
}

// Shutdown stops an active recording and releases every resource.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if s.rec != nil {
		if _, err := s.rec.Stop(); err != nil && !errors.Is(err, recorder.ErrNotRecording) {
			slog.Error("stop recording on shutdown", "error", err)
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.closeCatalog()
}

func (s *Service) setupCatalog() error {
	if s.opts.Catalog != nil {
		s.catalog = s.opts.Catalog
		return nil
	}
	dir, err := s.cfg.CatalogPath()
	if err != nil {
		return fmt.Errorf("catalog path: %w", err)
	}
	c, err := catalog.Open(catalog.Options{Dir: dir})
	if err != nil {
		return err
	}
	s.catalog = c
	slog.Info("catalog initialized", "path", dir)
	return nil
}

func (s *Service) closeCatalog() {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Close(); err != nil {
		slog.Error("close catalog", "error", err)
	}
	s.catalog = nil
}

func (s *Service) setupRecorder() error {
	devices := s.opts.Devices
	if devices == nil {
		devices = SystemDevices{}
	}
	muxer := s.opts.Muxer
	if muxer == nil {
		muxer = media.FFmpeg{Binary: s.cfg.FFmpegPath}
	}

	classifier := s.opts.Classifier
	if classifier == nil && s.cfg.Gesture.APIKey != "" {
		c, err := newClassifier(s.cfg.Gesture)
		if err != nil {
			return fmt.Errorf("gesture classifier: %w", err)
		}
		classifier = c
	}
	if classifier == nil && s.cfg.Gesture.Enabled {
		slog.Warn("gesture support enabled without a classifier, gestures are ignored")
	}

	rec, err := recorder.New(recorder.Config{
		Devices:             devices,
		Muxer:               muxer,
		Classifier:          classifier,
		Settings:            s.cfg.Settings,
		Gestures:            s.cfg.Gesture.Enabled,
		ConfidenceThreshold: s.cfg.Gesture.ConfidenceThreshold,
		CooldownFrames:      s.cfg.Gesture.CooldownFrames,
		Clock:               s.opts.Clock,
		OnSessionEnd:        s.saveSession,
	})
	if err != nil {
		return err
	}
	s.rec = rec
	return nil
}

func (s *Service) setupHotkey(ctx context.Context) {
	var bindings []hotkey.Binding
	add := func(name, combo string, action func()) {
		if combo != "" {
			bindings = append(bindings, hotkey.Binding{Name: name, Combo: combo, Action: action})
		}
	}
	add("record", s.cfg.Hotkeys.Record, func() {
		go func() {
			if err := s.ToggleRecording(ctx); err != nil {
				slog.Error("toggle recording", "error", err)
			}
		}()
	})
	add("screenshot", s.cfg.Hotkeys.Screenshot, func() {
		go func() {
			if _, err := s.TakeScreenshot(); err != nil {
				slog.Error("screenshot", "error", err)
			}
		}()
	})
	add("gestures", s.cfg.Hotkeys.Gestures, func() {
		s.SetGestureSupport(!s.rec.GestureSupport())
	})

	m, err := hotkey.New(bindings...)
	if err != nil {
		slog.Error("create hotkeys", "error", err)
		return
	}
	if err := m.Start(); err != nil {
		slog.Error("start hotkeys", "error", err)
		return
	}
	s.hotkey = m
}

// emit is a safe wrapper around the event callback.
func (s *Service) emit(name string, data any) {
	if s.opts.Emit != nil {
		s.opts.Emit(name, data)
	}
}

// saveSession stores a finished session in the catalog.
func (s *Service) saveSession(res recorder.Result) {
	rec := recordFromResult(res)
	if s.catalog != nil {
		if err := s.catalog.Put(context.Background(), rec); err != nil {
			slog.Error("save session", "session", rec.ID, "error", err)
		}
	}
	s.emit(EventSessionSaved, rec)
	s.emit(EventRecordingState, s.rec.Status())
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording
// ─────────────────────────────────────────────────────────────────────────────

// StartRecording starts a capture session. Calling it while a session is
// active does nothing.
func (s *Service) StartRecording(ctx context.Context) error {
	if err := s.rec.Start(ctx); err != nil {
		s.emit(EventRecordingError, errorEvent(err))
		s.emit(EventRecordingState, s.rec.Status())
		return err
	}
	s.emit(EventRecordingState, s.rec.Status())
	return nil
}

// StopRecording stops the active session and waits for the final file.
func (s *Service) StopRecording() (recorder.Result, error) {
	res, err := s.rec.Stop()
	if errors.Is(err, recorder.ErrNotRecording) {
		return res, err
	}
	s.emit(EventRecordingState, s.rec.Status())
	return res, err
}

// ToggleRecording starts a session when idle and stops it otherwise.
func (s *Service) ToggleRecording(ctx context.Context) error {
	switch s.rec.Status().State {
	case types.StateIdle, types.StateFailedStart:
		return s.StartRecording(ctx)
	case types.StateRecording:
		_, err := s.StopRecording()
		return err
	}
	return nil
}

// GetStatus returns the recorder status.
func (s *Service) GetStatus() types.RecorderStatus {
	return s.rec.Status()
}

// TakeScreenshot saves the most recent recorded frame.
func (s *Service) TakeScreenshot() (string, error) {
	path, err := s.rec.Screenshot(s.opts.Clock())
	if err != nil {
		s.emit(EventRecordingError, errorEvent(err))
		return "", err
	}
	s.emit(EventScreenshot, path)
	return path, nil
}

// SetGestureSupport enables or disables gesture commands.
func (s *Service) SetGestureSupport(on bool) {
	s.rec.SetGestureSupport(on)
	slog.Info("gesture support", "enabled", on)
	s.emit(EventGestures, on)
}

// SetVolume sets the recording volume in [0, 1].
func (s *Service) SetVolume(v float64) {
	s.rec.SetVolume(v)
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetSettings returns the recorder settings.
func (s *Service) GetSettings() types.Settings {
	return s.rec.Settings()
}

// SetSettings replaces the recorder settings and persists them.
// It fails while a session is active.
func (s *Service) SetSettings(settings types.Settings) error {
	if err := s.rec.SetSettings(settings); err != nil {
		return err
	}
	s.cfg.Settings = settings
	return s.cfg.Save()
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

// Sessions returns finished sessions, newest first.
func (s *Service) Sessions(ctx context.Context) ([]catalog.Record, error) {
	return s.catalog.List(ctx)
}

// DeleteSession removes a session from the catalog. The recording file is
// left on disk.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.catalog.Delete(ctx, id)
}
