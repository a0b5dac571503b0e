//go:build !nogocv

package videocapture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// Camera is an open OpenCV capture device.
type Camera struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	fps    float64
	size   image.Point
	misses missCounter
	closed bool
}

// Open opens the camera at index.
func Open(index int) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open camera %d: device not opened", index)
	}

	c := &Camera{
		vc:     vc,
		mat:    gocv.NewMat(),
		fps:    vc.Get(gocv.VideoCaptureFPS),
		misses: missCounter{limit: MaxMissedFrames},
		size: image.Pt(
			int(vc.Get(gocv.VideoCaptureFrameWidth)),
			int(vc.Get(gocv.VideoCaptureFrameHeight)),
		),
	}
	slog.Debug("camera opened", "index", index, "fps", c.fps, "size", c.size)
	return c, nil
}

// Read returns the next frame, or nil when the device produced none.
func (c *Camera) Read() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	ok := c.vc.Read(&c.mat) && !c.mat.Empty()
	if err := c.misses.observe(ok); err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return img, nil
}

// FPS returns the frame rate reported by the driver, 0 when unknown.
func (c *Camera) FPS() float64 { return c.fps }

// Size returns the frame size reported by the driver.
func (c *Camera) Size() image.Point { return c.size }

// Close releases the device.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return errors.Join(c.mat.Close(), c.vc.Close())
}

// Writer encodes frames into a video file.
type Writer struct {
	mu     sync.Mutex
	vw     *gocv.VideoWriter
	size   image.Point
	closed bool
}

// Create opens a video file for frames of the given size.
func Create(path string, fps float64, size image.Point) (*Writer, error) {
	vw, err := gocv.VideoWriterFile(path, Codec, fps, size.X, size.Y, true)
	if err != nil {
		return nil, fmt.Errorf("create video writer %s: %w", path, err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("create video writer %s: not opened", path)
	}
	return &Writer{vw: vw, size: size}, nil
}

// Write appends one frame. Frames of a different size are resized.
func (w *Writer) Write(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	if mat.Cols() != w.size.X || mat.Rows() != w.size.Y {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(mat, &resized, w.size, 0, 0, gocv.InterpolationLinear)
		return w.vw.Write(resized)
	}
	return w.vw.Write(mat)
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.vw.Close()
}
