package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// ResizeToVariant scales a canonical render to the exact dimensions of
// size. Resizing to SizeDefault returns the input unchanged.
func ResizeToVariant(pngBytes []byte, size Size) ([]byte, error) {
	v, ok := Variants[size]
	if !ok {
		return nil, ErrUnsupportedSize
	}
	if size == SizeDefault {
		return pngBytes, nil
	}
	src, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("ogimage: decode render: %w", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("ogimage: encode %s: %w", size, err)
	}
	return buf.Bytes(), nil
}
