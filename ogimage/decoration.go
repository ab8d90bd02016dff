package ogimage

import (
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Decoration is an image overlaid on the panel of any post whose title
// mentions Keyword.
type Decoration struct {
	Keyword string
	Source  ImageSource
	X, Y    float64 // top-left corner before rotation
	Size    float64
	Angle   float64 // degrees, clockwise; rotation is about the image centre
	Alpha   float64 // 0 means fully opaque
}

// Matches reports whether the decoration applies to title.
func (d Decoration) Matches(title string) bool {
	return d.Keyword != "" && strings.Contains(strings.ToLower(title), strings.ToLower(d.Keyword))
}

// DefaultDecoration places a decoration the way the brandmark overlays are
// laid out at the canonical size.
func DefaultDecoration(keyword string, src ImageSource) Decoration {
	v := Variants[SizeDefault]
	return Decoration{
		Keyword: keyword,
		Source:  src,
		X:       float64(v.Width) / 4.5 * 2,
		Y:       float64(v.Height) / 3 * 2,
		Size:    250,
		Angle:   -20,
		Alpha:   0.45,
	}
}

func drawDecoration(ctx context.Context, s *Surface, d Decoration) error {
	img, err := d.Source.Image(ctx)
	if err != nil {
		return fmt.Errorf("ogimage: decoration %q: %w", d.Keyword, err)
	}
	size := int(d.Size)
	faded := imaging.Resize(img, size, size, imaging.Lanczos)
	if d.Alpha > 0 && d.Alpha < 1 {
		for i := 3; i < len(faded.Pix); i += 4 {
			faded.Pix[i] = uint8(float64(faded.Pix[i]) * d.Alpha)
		}
	}
	cx, cy := d.X+d.Size/2, d.Y+d.Size/2
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.RotateAbout(gg.Radians(d.Angle), cx, cy)
	s.dc.DrawImageAnchored(faded, int(cx), int(cy), 0.5, 0.5)
	return nil
}
