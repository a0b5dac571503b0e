//go:build nogocv

package videocapture

import "image"

// Camera is unavailable in builds without OpenCV.
type Camera struct{}

// Open returns ErrUnsupported in builds without OpenCV.
func Open(int) (*Camera, error) { return nil, ErrUnsupported }

func (*Camera) Read() (image.Image, error) { return nil, ErrUnsupported }
func (*Camera) FPS() float64               { return 0 }
func (*Camera) Size() image.Point          { return image.Point{} }
func (*Camera) Close() error               { return nil }

// Writer is unavailable in builds without OpenCV.
type Writer struct{}

// Create returns ErrUnsupported in builds without OpenCV.
func Create(string, float64, image.Point) (*Writer, error) { return nil, ErrUnsupported }

func (*Writer) Write(image.Image) error { return ErrUnsupported }
func (*Writer) Close() error            { return nil }
