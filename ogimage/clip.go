package ogimage

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// PathFunc appends a closed path to dc.
type PathFunc func(dc *gg.Context)

// WithClip runs draw with the drawing area restricted to path, intersected
// with any enclosing clip. The enclosing clip is restored when WithClip
// returns, whether draw succeeds, fails or panics.
//
// gg's Push/Pop leave the clip mask alone, so the surface keeps its own
// stack of masks.
func (s *Surface) WithClip(path PathFunc, draw func() error) error {
	mask := s.rasterize(path)
	if n := len(s.clips); n > 0 {
		intersectMask(mask, s.clips[n-1])
	}
	if err := s.dc.SetMask(mask); err != nil {
		return fmt.Errorf("ogimage: install clip: %w", err)
	}
	s.clips = append(s.clips, mask)
	defer s.popClip()
	return draw()
}

func (s *Surface) popClip() {
	s.clips = s.clips[:len(s.clips)-1]
	if n := len(s.clips); n > 0 {
		// same size as the context, cannot fail
		_ = s.dc.SetMask(s.clips[n-1])
		return
	}
	s.dc.ResetClip()
}

// ClipDepth reports how many clip scopes are active.
func (s *Surface) ClipDepth() int { return len(s.clips) }

func (s *Surface) rasterize(path PathFunc) *image.Alpha {
	tmp := gg.NewContext(s.width, s.height)
	path(tmp)
	tmp.SetColor(color.White)
	tmp.Fill()
	return tmp.AsMask()
}

func intersectMask(dst, parent *image.Alpha) {
	for i := range dst.Pix {
		dst.Pix[i] = uint8(uint16(dst.Pix[i]) * uint16(parent.Pix[i]) / 0xff)
	}
}

// bezierCircle is the control point distance for approximating a quarter
// circle with one cubic Bézier curve.
const bezierCircle = 0.55191502449

// RoundedRectPath builds a rectangle whose corners are quarter circles of
// radius r, each approximated with a cubic Bézier curve.
func RoundedRectPath(x, y, w, h, r float64) PathFunc {
	return func(dc *gg.Context) {
		r := math.Min(r, math.Min(w, h)/2)
		cp := r * (1 - bezierCircle)
		right, bottom := x+w, y+h
		dc.NewSubPath()
		dc.MoveTo(right-r, y)
		dc.CubicTo(right-cp, y, right, y+cp, right, y+r)
		dc.LineTo(right, bottom-r)
		dc.CubicTo(right, bottom-cp, right-cp, bottom, right-r, bottom)
		dc.LineTo(x+r, bottom)
		dc.CubicTo(x+cp, bottom, x, bottom-cp, x, bottom-r)
		dc.LineTo(x, y+r)
		dc.CubicTo(x, y+cp, x+cp, y, x+r, y)
		dc.ClosePath()
	}
}

// CirclePath builds a full circle.
func CirclePath(cx, cy, r float64) PathFunc {
	return func(dc *gg.Context) {
		dc.NewSubPath()
		dc.DrawArc(cx, cy, r, 0, 2*math.Pi)
		dc.ClosePath()
	}
}
