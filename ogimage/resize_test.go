package ogimage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func canonicalPNG(t *testing.T) []byte {
	t.Helper()
	v := Variants[SizeDefault]
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(0, 0, color.RGBA{A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestResizeToVariant(t *testing.T) {
	src := canonicalPNG(t)

	out, err := ResizeToVariant(src, SizeSmall)
	if err != nil {
		t.Fatalf("ResizeToVariant failed: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode resized: %v", err)
	}
	if cfg.Width != 504 || cfg.Height != 265 {
		t.Errorf("small = %dx%d, want 504x265", cfg.Width, cfg.Height)
	}

	same, err := ResizeToVariant(src, SizeDefault)
	if err != nil {
		t.Fatalf("ResizeToVariant default failed: %v", err)
	}
	if !bytes.Equal(same, src) {
		t.Error("default size should pass the render through")
	}
}

func TestResizeToVariantErrors(t *testing.T) {
	if _, err := ResizeToVariant(canonicalPNG(t), Size("huge")); !errors.Is(err, ErrUnsupportedSize) {
		t.Errorf("err = %v, want ErrUnsupportedSize", err)
	}
	if _, err := ResizeToVariant([]byte("not a png"), SizeSmall); err == nil {
		t.Error("corrupt input should fail")
	}
}
