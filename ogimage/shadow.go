package ogimage

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Shadow is a drop shadow in canvas terms: Blur is the canvas shadowBlur,
// which spreads over roughly twice the Gaussian sigma.
type Shadow struct {
	OffsetX float64
	OffsetY float64
	Blur    float64
	Color   color.Color
}

// drawShadow paints a blurred silhouette of paint under the current
// drawing. bounds is the area paint touches, in surface coordinates.
func (s *Surface) drawShadow(bounds image.Rectangle, sh Shadow, paint func(dc *gg.Context, c color.Color)) {
	sigma := sh.Blur / 2
	pad := int(3*sigma) + 1
	r := bounds.Inset(-pad)
	if r.Empty() {
		return
	}
	layer := gg.NewContext(r.Dx(), r.Dy())
	layer.Translate(float64(-r.Min.X), float64(-r.Min.Y))
	c := sh.Color
	if c == nil {
		c = color.Black
	}
	paint(layer, c)

	var silhouette image.Image = layer.Image()
	if sigma > 0 {
		silhouette = imaging.Blur(silhouette, sigma)
	}
	s.dc.DrawImage(silhouette, r.Min.X+int(sh.OffsetX), r.Min.Y+int(sh.OffsetY))
}
