// Package commands implements the camrec command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"go.aimuz.me/camrec/config"
)

// BuildInfo is set by main from linker flags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var (
	// Global flags
	configPath string
	logLevel   string
	logFile    string
	verbose    bool

	build BuildInfo
)

var rootCmd = &cobra.Command{
	Use:   "camrec",
	Short: "Record webcam video with microphone audio",
	Long: `camrec - record a camera and a microphone into a single MP4 file.

While recording, optional hand gestures draw on the video and change the
microphone volume. Screenshots of the recorded frame can be taken at any
time. Finished sessions are kept in a local catalog.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/camrec/
  Linux:   ~/.config/camrec/
  Windows: %AppData%/camrec/

Examples:
  # Record until Ctrl+C
  camrec record

  # Record for one minute with gestures
  camrec record --gestures --duration 1m

  # List finished sessions
  camrec sessions list`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command.
func Execute(info BuildInfo) error {
	build = info
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (.json or .yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a rotated file instead of stderr")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
}

// loadConfig loads the config file selected by --config, or the default one.
// Credentials missing from the file are taken from the environment.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging
// ─────────────────────────────────────────────────────────────────────────────

func setupLogging(cmd *cobra.Command, _ []string) error {
	level := logLevel
	if level == "" {
		// The config may name a level; a broken config is reported by the
		// command that needs it.
		if cfg, err := loadConfig(); err == nil {
			level = cfg.LogLevel
		}
	}
	if verbose {
		level = "debug"
	}

	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(newHandler(cmd.ErrOrStderr(), logFile, lvl)))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// newHandler logs in color to a terminal, or as JSON to a rotated file.
func newHandler(stderr io.Writer, file string, level slog.Level) slog.Handler {
	if file != "" {
		w := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	noColor := true
	if f, ok := stderr.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	return tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
}
