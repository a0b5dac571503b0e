// Package config handles application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"go.aimuz.me/camrec/gesture"
	"go.aimuz.me/camrec/hotkey"
	"go.aimuz.me/camrec/internal/types"
)

const (
	appName        = "camrec"
	configFileName = "config.json"
	catalogDirName = "sessions"
)

// Gesture providers.
const (
	ProviderOpenAI = "openai"
)

// Config represents the application configuration.
type Config struct {
	Settings types.Settings `json:"settings" yaml:"settings"`
	Gesture  Gesture        `json:"gesture" yaml:"gesture"`
	Hotkeys  Hotkeys        `json:"hotkeys" yaml:"hotkeys"`

	FFmpegPath string `json:"ffmpeg_path,omitempty" yaml:"ffmpeg_path,omitempty"`
	CatalogDir string `json:"catalog_dir,omitempty" yaml:"catalog_dir,omitempty"`
	LogLevel   string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	path string
}

// Gesture configures gesture recognition.
type Gesture struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	// Timeout bounds one classification request, e.g. "2s".
	Timeout             string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	ConfidenceThreshold int    `json:"confidence_threshold,omitempty" yaml:"confidence_threshold,omitempty"`
	CooldownFrames      int    `json:"cooldown_frames,omitempty" yaml:"cooldown_frames,omitempty"`
}

// TimeoutDuration parses Timeout; zero when unset or invalid.
func (g Gesture) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Hotkeys holds global shortcut combos. Empty disables a shortcut.
type Hotkeys struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Record     string `json:"record,omitempty" yaml:"record,omitempty"`
	Screenshot string `json:"screenshot,omitempty" yaml:"screenshot,omitempty"`
	Gestures   string `json:"gestures,omitempty" yaml:"gestures,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load loads configuration from the default config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. Files ending in .yaml or .yml are
// read as YAML, everything else as JSON. A missing file yields the
// defaults, bound to path for Save.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.path = path
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.path = path
	return &cfg, nil
}

// Save persists the configuration to the file it was loaded from, or to the
// default path.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := Path()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// The file may hold an API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	c.path = path
	return nil
}

// File returns the path the config is bound to, if any.
func (c *Config) File() string {
	return c.path
}

// ApplyEnv fills unset gesture credentials from the environment.
func (c *Config) ApplyEnv() {
	if c.Gesture.APIKey == "" {
		c.Gesture.APIKey = firstEnv("CAMREC_OPENAI_API_KEY", "OPENAI_API_KEY")
	}
	if c.Gesture.BaseURL == "" {
		c.Gesture.BaseURL = firstEnv("CAMREC_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	}
}

// CatalogPath returns the session catalog directory.
func (c *Config) CatalogPath() (string, error) {
	if c.CatalogDir != "" {
		return c.CatalogDir, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, catalogDirName), nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	s := c.Settings
	if s.CameraIndex < 0 {
		errs = append(errs, fmt.Errorf("camera index %d is negative", s.CameraIndex))
	}
	if s.MicrophoneIndex < 0 {
		errs = append(errs, fmt.Errorf("microphone index %d is negative", s.MicrophoneIndex))
	}
	if s.SavePath == "" {
		errs = append(errs, errors.New("save path required"))
	}

	g := c.Gesture
	if g.Enabled {
		if g.Provider != ProviderOpenAI {
			errs = append(errs, fmt.Errorf("unknown gesture provider %q", g.Provider))
		}
		if g.APIKey == "" {
			errs = append(errs, errors.New("gesture api key required"))
		}
	}
	if g.Timeout != "" {
		if _, err := time.ParseDuration(g.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("gesture timeout: %w", err))
		}
	}
	if g.ConfidenceThreshold < 0 {
		errs = append(errs, errors.New("confidence threshold must not be negative"))
	}
	if g.CooldownFrames < 0 {
		errs = append(errs, errors.New("cooldown frames must not be negative"))
	}

	if c.Hotkeys.Enabled {
		for _, combo := range []string{c.Hotkeys.Record, c.Hotkeys.Screenshot, c.Hotkeys.Gestures} {
			if combo == "" {
				continue
			}
			if _, err := hotkey.ParseCombo(combo); err != nil {
				errs = append(errs, err)
			}
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Legacy settings import
// ─────────────────────────────────────────────────────────────────────────────

// legacySettings is the settings.json written by the earlier desktop
// recorder.
type legacySettings struct {
	CameraChoice     *int   `json:"cameraChoice"`
	MicrophoneChoice *int   `json:"microphoneChoice"`
	SavePath         string `json:"savePath"`
	ScreenshotPath   string `json:"screenshotPath"`
}

// ImportLegacy merges a legacy settings.json into c. Keys absent from the
// file keep their current value.
func (c *Config) ImportLegacy(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read legacy settings: %w", err)
	}

	var l legacySettings
	if err := json.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("unmarshal legacy settings: %w", err)
	}

	if l.CameraChoice != nil {
		c.Settings.CameraIndex = *l.CameraChoice
	}
	if l.MicrophoneChoice != nil {
		c.Settings.MicrophoneIndex = *l.MicrophoneChoice
	}
	if l.SavePath != "" {
		c.Settings.SavePath = l.SavePath
	}
	if l.ScreenshotPath != "" {
		c.Settings.ScreenshotPath = l.ScreenshotPath
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (c *Config) applyDefaults() {
	if c.Settings.SavePath == "" || c.Settings.ScreenshotPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			if c.Settings.SavePath == "" {
				c.Settings.SavePath = filepath.Join(home, "Videos")
			}
			if c.Settings.ScreenshotPath == "" {
				c.Settings.ScreenshotPath = filepath.Join(home, "Pictures")
			}
		}
	}

	if c.Gesture.Provider == "" {
		c.Gesture.Provider = ProviderOpenAI
	}
	if c.Gesture.Timeout == "" {
		c.Gesture.Timeout = "2s"
	}
	if c.Gesture.ConfidenceThreshold == 0 {
		c.Gesture.ConfidenceThreshold = gesture.DefaultConfidenceThreshold
	}
	if c.Gesture.CooldownFrames == 0 {
		c.Gesture.CooldownFrames = gesture.DefaultCooldownFrames
	}

	if c.Hotkeys.Record == "" {
		c.Hotkeys.Record = hotkey.DefaultRecord
	}
	if c.Hotkeys.Screenshot == "" {
		c.Hotkeys.Screenshot = hotkey.DefaultScreenshot
	}
	if c.Hotkeys.Gestures == "" {
		c.Hotkeys.Gestures = hotkey.DefaultGestures
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
