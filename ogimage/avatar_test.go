package ogimage

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestDrawCircularImage(t *testing.T) {
	s, err := NewSurface(100, 100)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	red := color.RGBA{R: 0xff, A: 0xff}
	src := solid(40, 20, red)
	before := append([]byte(nil), src.Pix...)

	if err := DrawCircularImage(s, src, 50, 50, 60, nil); err != nil {
		t.Fatalf("DrawCircularImage failed: %v", err)
	}
	if s.ClipDepth() != 0 {
		t.Errorf("ClipDepth = %d, want 0", s.ClipDepth())
	}
	if got := s.Image().At(50, 50); color.RGBAModel.Convert(got) != red {
		t.Errorf("centre = %v, want red", got)
	}
	for _, p := range []image.Point{{22, 22}, {0, 0}, {78, 78}} {
		if alphaAt(s, p.X, p.Y) != 0 {
			t.Errorf("pixel %v outside the circle was painted", p)
		}
	}
	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatal("source image was modified")
		}
	}
}

func TestDrawCircularImageShadow(t *testing.T) {
	s, err := NewSurface(100, 100)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	sh := avatarShadow
	if err := DrawCircularImage(s, solid(10, 10, color.White), 40, 40, 40, &sh); err != nil {
		t.Fatalf("DrawCircularImage failed: %v", err)
	}
	// below right of the disc, inside the offset shadow
	if alphaAt(s, 62, 50) == 0 {
		t.Error("shadow not drawn")
	}
}
