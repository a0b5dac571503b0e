package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.aimuz.me/camrec/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		configPath, logLevel, logFile, verbose = "", "", "", false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewHandler_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camrec.log")
	log := slog.New(newHandler(os.Stderr, path, slog.LevelInfo))
	log.Debug("hidden")
	log.Info("recording started", "session", "s1")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, `"msg":"recording started"`) || !strings.Contains(got, `"session":"s1"`) {
		t.Errorf("log file = %q", got)
	}
	if strings.Contains(got, "hidden") {
		t.Error("debug record written at info level")
	}
}

func TestVersion(t *testing.T) {
	build = BuildInfo{Version: "1.2.3", Commit: "abc", Date: "today"}
	out, err := run(t, "--config", filepath.Join(t.TempDir(), "c.json"), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "camrec 1.2.3 (commit abc") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigShow_MasksAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Gesture.APIKey = "sk-secret"
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "sk-secret") {
		t.Error("api key printed")
	}
	if !strings.Contains(out, "save_path:") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigImportLegacy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	legacy := filepath.Join(dir, "settings.json")
	saveDir := filepath.Join(dir, "videos")
	data := `{"cameraChoice": 1, "savePath": "` + filepath.ToSlash(saveDir) + `"}`
	if err := os.WriteFile(legacy, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "--config", path, "config", "import-legacy", legacy); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Settings.CameraIndex != 1 || cfg.Settings.SavePath != filepath.ToSlash(saveDir) {
		t.Errorf("settings = %+v", cfg.Settings)
	}
}

func TestRecordFlags(t *testing.T) {
	cfg := config.Default()
	f := recordCmd.Flags()
	if err := f.Parse([]string{"--camera", "2", "--save-path", "/tmp/rec", "--gestures"}); err != nil {
		t.Fatal(err)
	}
	applyRecordFlags(recordCmd, cfg)

	if cfg.Settings.CameraIndex != 2 || cfg.Settings.SavePath != "/tmp/rec" || !cfg.Gesture.Enabled {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Settings.MicrophoneIndex != 0 {
		t.Errorf("unchanged flag applied: microphone = %d", cfg.Settings.MicrophoneIndex)
	}
}

func TestReadControls_Quit(t *testing.T) {
	var out bytes.Buffer
	quit := make(chan struct{})
	readControls(context.Background(), strings.NewReader("x\n\nq\n"), &out, nil, quit)

	select {
	case <-quit:
	default:
		t.Fatal("quit not closed")
	}
	if !strings.Contains(out.String(), "Commands:") {
		t.Errorf("output = %q", out.String())
	}
}
