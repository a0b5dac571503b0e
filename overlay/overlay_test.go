package overlay

import (
	"image"
	"image/color"
	"testing"
	"time"

	"go.aimuz.me/camrec/internal/types"
)

func TestAnchor(t *testing.T) {
	got := Anchor(types.BoundingBox{YMin: 40, XMin: 100, YMax: 200, XMax: 160})
	want := image.Pt(130, 40)
	if got != want {
		t.Errorf("Anchor = %v, want %v", got, want)
	}
}

func TestStroke_SegmentBreaks(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	a, b, c, d := image.Pt(10, 10), image.Pt(20, 10), image.Pt(50, 50), image.Pt(60, 50)

	var s Stroke
	s.Append(a, base)
	s.Append(b, base.Add(100*time.Millisecond))
	// More than two seconds later: c must be duplicated.
	s.Append(c, base.Add(3*time.Second))
	s.Append(d, base.Add(3100*time.Millisecond))

	wantPoints := []image.Point{a, a, b, c, c, d}
	got := s.Points()
	if len(got) != len(wantPoints) {
		t.Fatalf("points = %v, want %v", got, wantPoints)
	}
	for i := range got {
		if got[i] != wantPoints[i] {
			t.Fatalf("points = %v, want %v", got, wantPoints)
		}
	}

	segs := s.Segments()
	wantSegs := [][2]image.Point{{a, b}, {c, d}}
	if len(segs) != len(wantSegs) {
		t.Fatalf("segments = %v, want %v", segs, wantSegs)
	}
	for i := range segs {
		if segs[i] != wantSegs[i] {
			t.Errorf("segment %d = %v, want %v", i, segs[i], wantSegs[i])
		}
	}
}

func TestStroke_HoldingStillKeepsLine(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	a, b, c := image.Pt(10, 10), image.Pt(50, 10), image.Pt(50, 40)

	tests := []struct {
		name     string
		holdAt   time.Duration
		wantSegs [][2]image.Point
	}{
		{"within gap", 200 * time.Millisecond, [][2]image.Point{{a, b}, {b, c}}},
		{"after gap", 3 * time.Second, [][2]image.Point{{a, b}, {b, c}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Stroke
			s.Append(a, base)
			s.Append(b, base.Add(100*time.Millisecond))
			s.Append(b, base.Add(tt.holdAt))

			if got := s.Segments(); len(got) != 1 || got[0] != [2]image.Point{a, b} {
				t.Fatalf("segments after holding at b = %v, want [%v %v]", got, a, b)
			}

			s.Append(c, base.Add(tt.holdAt+100*time.Millisecond))
			got := s.Segments()
			if len(got) != len(tt.wantSegs) {
				t.Fatalf("segments = %v, want %v", got, tt.wantSegs)
			}
			for i := range got {
				if got[i] != tt.wantSegs[i] {
					t.Errorf("segment %d = %v, want %v", i, got[i], tt.wantSegs[i])
				}
			}
		})
	}
}

func TestStroke_ExactlyTwoSecondsContinues(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var s Stroke
	s.Append(image.Pt(0, 0), base)
	s.Append(image.Pt(5, 5), base.Add(SegmentGap))

	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3 (only the first anchor duplicated)", s.Len())
	}
}

func TestStroke_Clear(t *testing.T) {
	now := time.Now()
	var s Stroke
	s.Append(image.Pt(1, 1), now)
	s.Append(image.Pt(2, 2), now)
	s.Clear()

	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", s.Len())
	}
	if len(s.Segments()) != 0 {
		t.Error("segments remain after Clear")
	}
}

func TestStroke_Render(t *testing.T) {
	now := time.Now()
	var s Stroke
	s.Append(image.Pt(10, 20), now)
	s.Append(image.Pt(50, 20), now)

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	s.Render(img)

	if got := img.RGBAAt(30, 20); got.R < 250 || got.G > 40 || got.A < 250 {
		t.Errorf("pixel on the line = %v, want ~%v", got, StrokeColor)
	}
	if got := img.RGBAAt(30, 40); got != (color.RGBA{}) {
		t.Errorf("pixel off the line = %v, want transparent", got)
	}
}

func TestStroke_RenderSkipsBreak(t *testing.T) {
	base := time.Now()
	var s Stroke
	s.Append(image.Pt(5, 5), base)
	s.Append(image.Pt(5, 40), base.Add(3*time.Second))

	img := image.NewRGBA(image.Rect(0, 0, 16, 48))
	s.Render(img)

	if got := img.RGBAAt(5, 22); got != (color.RGBA{}) {
		t.Errorf("line drawn across a segment break: %v", got)
	}
}

func TestMirror(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img.SetRGBA(0, 0, red)
	img.SetRGBA(2, 1, blue)

	Mirror(img)

	if got := img.RGBAAt(2, 0); got != red {
		t.Errorf("(2,0) = %v, want red", got)
	}
	if got := img.RGBAAt(0, 1); got != blue {
		t.Errorf("(0,1) = %v, want blue", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("(0,0) = %v, want empty", got)
	}
}

func TestToRGBA(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 9, 8))
	src.SetGray(5, 5, color.Gray{Y: 200})

	dst := ToRGBA(src)
	if dst.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("bounds = %v", dst.Bounds())
	}
	if got := dst.RGBAAt(0, 0); got.R != 200 {
		t.Errorf("(0,0) = %v, want gray 200", got)
	}
}
