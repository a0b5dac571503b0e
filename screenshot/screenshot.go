// Package screenshot writes still images of the most recent recorded frame.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.aimuz.me/camrec/media"
)

// ErrNotAvailable is returned when there is no frame to capture, i.e. no
// session is recording.
var ErrNotAvailable = errors.New("screenshot: no frame available")

// Save encodes img as PNG into dir under a name derived from at, and
// returns the written path. A partially written file is removed.
func Save(img image.Image, dir string, at time.Time) (string, error) {
	if img == nil {
		return "", ErrNotAvailable
	}
	if dir == "" {
		return "", fmt.Errorf("screenshot: %w", media.ErrEmptyPath)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("stat screenshot dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("screenshot dir %q is not a directory", dir)
	}

	path := filepath.Join(dir, media.ScreenshotName(at))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create screenshot: %w", err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close screenshot: %w", err)
	}
	return path, nil
}
