package ogimage

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// DrawCircularImage draws img scaled to cover a diameter-sized square
// centred on (cx, cy), masked to a circle, over a drop shadow. img is not
// modified and the circular clip does not outlive the call.
func DrawCircularImage(s *Surface, img image.Image, cx, cy, diameter float64, shadow *Shadow) error {
	r := diameter / 2
	if shadow != nil {
		bounds := image.Rect(int(cx-r), int(cy-r), int(cx+r)+1, int(cy+r)+1)
		s.drawShadow(bounds, *shadow, func(dc *gg.Context, c color.Color) {
			dc.DrawCircle(cx, cy, r)
			dc.SetColor(c)
			dc.Fill()
		})
	}
	d := int(diameter)
	scaled := imaging.Fill(img, d, d, imaging.Center, imaging.Lanczos)
	return s.WithClip(CirclePath(cx, cy, r), func() error {
		s.dc.DrawImage(scaled, int(cx-r), int(cy-r))
		return nil
	})
}
