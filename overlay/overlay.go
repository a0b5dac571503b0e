// Package overlay keeps the operator's "draw" gesture strokes and renders
// them onto captured frames.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"golang.org/x/image/vector"

	"go.aimuz.me/camrec/internal/types"
)

// Stroke appearance.
var (
	StrokeColor = color.RGBA{R: 255, G: 32, B: 32, A: 255}
	StrokeWidth = 5.0
)

// SegmentGap is the pause after which the next anchor starts a new segment.
const SegmentGap = 2 * time.Second

// Stroke is the ordered list of anchor points drawn by the operator.
// A point repeated twice in a row marks the start of a new segment.
type Stroke struct {
	points     []image.Point
	lastAppend time.Time
}

// Anchor returns the stroke point for a detection box: the horizontal
// centre of the box's top edge, where the raised fingertip is.
func Anchor(box types.BoundingBox) image.Point {
	return image.Point{
		X: int(math.Round((box.XMin + box.XMax) / 2)),
		Y: int(math.Round(box.YMin)),
	}
}

// Append adds an anchor observed at now. An anchor equal to the last point
// only keeps the stroke alive, so a repeated point always marks a segment
// break.
func (s *Stroke) Append(p image.Point, now time.Time) {
	if n := len(s.points); n > 0 && s.points[n-1] == p {
		s.lastAppend = now
		return
	}
	if s.lastAppend.IsZero() || now.Sub(s.lastAppend) > SegmentGap {
		s.points = append(s.points, p)
	}
	s.points = append(s.points, p)
	s.lastAppend = now
}

// Clear discards every point.
func (s *Stroke) Clear() {
	s.points = s.points[:0]
	s.lastAppend = time.Time{}
}

// Points returns a copy of the stored points.
func (s *Stroke) Points() []image.Point {
	out := make([]image.Point, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the number of stored points.
func (s *Stroke) Len() int {
	return len(s.points)
}

// Segments returns the line segments that Render draws.
// A pair is skipped when its points are equal or when its end point is
// immediately repeated, since that repetition opens a new segment.
func (s *Stroke) Segments() [][2]image.Point {
	var segs [][2]image.Point
	for i := 0; i+1 < len(s.points); i++ {
		a, b := s.points[i], s.points[i+1]
		if a == b {
			continue
		}
		if i+2 < len(s.points) && s.points[i+2] == b {
			continue
		}
		segs = append(segs, [2]image.Point{a, b})
	}
	return segs
}

// Render draws the stroke onto dst.
func (s *Stroke) Render(dst draw.Image) {
	segs := s.Segments()
	if len(segs) == 0 {
		return
	}

	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := float32(StrokeWidth / 2)
	for _, seg := range segs {
		addLine(z, seg[0].Sub(b.Min), seg[1].Sub(b.Min), half)
	}
	z.Draw(dst, b, image.NewUniform(StrokeColor), image.Point{})
}

// addLine adds a filled quad of half-width hw around the segment a-b.
func addLine(z *vector.Rasterizer, a, b image.Point, hw float32) {
	dx := float32(b.X - a.X)
	dy := float32(b.Y - a.Y)
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	// Unit normal scaled to the half width, extended along the direction
	// so consecutive segments overlap at the joints.
	nx, ny := -dy/l*hw, dx/l*hw
	ex, ey := dx/l*hw, dy/l*hw

	ax, ay := float32(a.X)-ex, float32(a.Y)-ey
	bx, by := float32(b.X)+ex, float32(b.Y)+ey

	z.MoveTo(ax+nx, ay+ny)
	z.LineTo(bx+nx, by+ny)
	z.LineTo(bx-nx, by-ny)
	z.LineTo(ax-nx, ay-ny)
	z.ClosePath()
}

// Mirror flips img horizontally in place.
func Mirror(img *image.RGBA) {
	b := img.Bounds()
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for l, r := 0, w-1; l < r; l, r = l+1, r-1 {
			li, ri := l*4, r*4
			row[li], row[ri] = row[ri], row[li]
			row[li+1], row[ri+1] = row[ri+1], row[li+1]
			row[li+2], row[ri+2] = row[ri+2], row[li+2]
			row[li+3], row[ri+3] = row[ri+3], row[li+3]
		}
	}
}

// ToRGBA returns an RGBA copy of src with its origin moved to (0,0).
func ToRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
