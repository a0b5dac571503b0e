package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go.aimuz.me/camrec/catalog"
	"go.aimuz.me/camrec/config"
	"go.aimuz.me/camrec/internal/app"
	"go.aimuz.me/camrec/recorder"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record until interrupted",
	Long: `Record the camera and the microphone into a new MP4 file.

Recording stops on Ctrl+C, after --duration, or when "q" is entered.
While recording, the following lines are read from stdin:
  s   save a screenshot of the current frame
  g   toggle gesture support
  +   raise the volume
  -   lower the volume
  m   mute
  q   stop recording

Examples:
  camrec record --camera 1 --save-path ~/Movies
  camrec record --gestures --duration 30s`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	f := recordCmd.Flags()
	f.Int("camera", 0, "camera index")
	f.Int("microphone", 0, "microphone index")
	f.String("save-path", "", "directory for recordings")
	f.String("screenshot-path", "", "directory for screenshots")
	f.Bool("gestures", false, "enable gesture support")
	f.Bool("hotkeys", false, "enable global hotkeys")
	f.String("ffmpeg", "", "ffmpeg binary")
	f.Duration("duration", 0, "stop after this long (0 records until interrupted)")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRecordFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	duration, _ := cmd.Flags().GetDuration("duration")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ended := make(chan catalog.Record, 1)
	svc := app.New(build.Version, cfg, app.Options{
		Emit: func(name string, data any) {
			logEvent(name, data)
			if rec, ok := data.(catalog.Record); ok && name == app.EventSessionSaved {
				select {
				case ended <- rec:
				default:
				}
			}
		},
	})
	if err := svc.Init(ctx); err != nil {
		return err
	}
	defer svc.Shutdown()

	if err := svc.StartRecording(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Recording. Press Ctrl+C or enter q to stop.")

	quit := make(chan struct{})
	go readControls(ctx, cmd.InOrStdin(), out, svc, quit)

	var timeout <-chan time.Time
	if duration > 0 {
		timeout = time.After(duration)
	}

	select {
	case rec := <-ended:
		// The session ended on its own after a device failure.
		printRecord(out, rec)
		if rec.Error != "" {
			return errors.New(rec.Error)
		}
		return nil
	case <-ctx.Done():
	case <-timeout:
	case <-quit:
	}

	fmt.Fprintln(out, "Stopping, muxing recording...")
	res, err := svc.StopRecording()
	if errors.Is(err, recorder.ErrNotRecording) {
		rec := <-ended
		printRecord(out, rec)
		return nil
	}
	printResult(out, res)
	return err
}

func applyRecordFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("camera") {
		cfg.Settings.CameraIndex, _ = f.GetInt("camera")
	}
	if f.Changed("microphone") {
		cfg.Settings.MicrophoneIndex, _ = f.GetInt("microphone")
	}
	if f.Changed("save-path") {
		cfg.Settings.SavePath, _ = f.GetString("save-path")
	}
	if f.Changed("screenshot-path") {
		cfg.Settings.ScreenshotPath, _ = f.GetString("screenshot-path")
	}
	if f.Changed("gestures") {
		cfg.Gesture.Enabled, _ = f.GetBool("gestures")
	}
	if f.Changed("hotkeys") {
		cfg.Hotkeys.Enabled, _ = f.GetBool("hotkeys")
	}
	if f.Changed("ffmpeg") {
		cfg.FFmpegPath, _ = f.GetString("ffmpeg")
	}
}

// readControls executes single-letter commands from r until ctx is done or
// r is exhausted. It closes quit on "q".
func readControls(ctx context.Context, r io.Reader, out io.Writer, svc *app.Service, quit chan<- struct{}) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		switch strings.TrimSpace(sc.Text()) {
		case "s":
			if path, err := svc.TakeScreenshot(); err == nil {
				fmt.Fprintln(out, "Screenshot:", path)
			}
		case "g":
			on := !svc.GetStatus().Gestures
			svc.SetGestureSupport(on)
			fmt.Fprintln(out, "Gestures:", onOff(on))
		case "+":
			svc.SetVolume(svc.GetStatus().Volume + recorder.VolumeStep)
			fmt.Fprintf(out, "Volume: %.0f%%\n", svc.GetStatus().Volume*100)
		case "-":
			svc.SetVolume(svc.GetStatus().Volume - recorder.VolumeStep)
			fmt.Fprintf(out, "Volume: %.0f%%\n", svc.GetStatus().Volume*100)
		case "m":
			svc.SetVolume(0)
			fmt.Fprintln(out, "Muted")
		case "q":
			close(quit)
			return
		case "":
		default:
			fmt.Fprintln(out, "Commands: s g + - m q")
		}
	}
}

func logEvent(name string, data any) {
	switch ev := data.(type) {
	case app.ControlEvent:
		slog.Info("gesture command", "label", ev.Label, "value", ev.Value, "volume", ev.Volume)
	case app.ErrorEvent:
		slog.Debug("event", "name", name, "code", ev.Code, "kind", ev.Kind)
	default:
		slog.Debug("event", "name", name)
	}
}

func printResult(w io.Writer, res recorder.Result) {
	if res.Output != "" {
		fmt.Fprintln(w, "Saved:", res.Output)
	}
	fmt.Fprintf(w, "Session %s: %d frames (%d repeated), %s\n",
		res.SessionID, res.Frames, res.RepeatedFrames,
		res.StoppedAt.Sub(res.StartedAt).Round(time.Second))
}

func printRecord(w io.Writer, rec catalog.Record) {
	if rec.Output != "" {
		fmt.Fprintln(w, "Saved:", rec.Output)
	}
	fmt.Fprintf(w, "Session %s: %s, %d frames (%d repeated), %s\n",
		rec.ID, rec.Status, rec.Frames, rec.RepeatedFrames,
		rec.Duration().Round(time.Second))
	if rec.Error != "" {
		fmt.Fprintln(w, "Error:", rec.Error)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
