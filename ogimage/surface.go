package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// Surface is a 2D drawing context sized for one render. It is owned by a
// single goroutine for its whole lifetime.
type Surface struct {
	dc     *gg.Context
	width  int
	height int
	clips  []*image.Alpha

	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
}

// NewSurface allocates a transparent surface of width x height pixels.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ogimage: allocate %dx%d surface: dimensions must be positive", width, height)
	}
	regular, bold, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Surface{
		dc:      gg.NewContext(width, height),
		width:   width,
		height:  height,
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Image returns the current pixels. The result aliases the surface.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// PNG encodes the current pixels. PNG is lossless: quality only trades
// encoding speed for output size (<=0 fastest, >=1 smallest).
func (s *Surface) PNG(quality float64) ([]byte, error) {
	enc := png.Encoder{CompressionLevel: compressionLevel(quality)}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, s.dc.Image()); err != nil {
		return nil, fmt.Errorf("ogimage: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func compressionLevel(quality float64) png.CompressionLevel {
	switch {
	case quality <= 0:
		return png.BestSpeed
	case quality >= 1:
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}

// FillRect fills an axis-aligned rectangle, honouring the active clip.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetColor(c)
	s.dc.Fill()
}

// face returns a cached face. Faces keep glyph caches and must not be
// shared across goroutines, so each surface owns its own.
func (s *Surface) face(size float64, bold bool) font.Face {
	key := faceKey{size: size, bold: bold}
	if f, ok := s.faces[key]; ok {
		return f
	}
	src := s.regular
	if bold {
		src = s.bold
	}
	f := newFace(src, size)
	s.faces[key] = f
	return f
}

// MeasureWrapped word-wraps text to maxWidth in the bold family at size
// and returns the width and height of the resulting block.
func (s *Surface) MeasureWrapped(text string, size, maxWidth, lineHeight float64) (float64, float64) {
	s.dc.SetFontFace(s.face(size, true))
	lines := s.dc.WordWrap(text, maxWidth)
	return s.dc.MeasureMultilineString(strings.Join(lines, "\n"), lineHeight)
}

// TextStyle describes how DrawText renders a block.
type TextStyle struct {
	Size       float64
	Bold       bool
	LineHeight float64
	Color      color.Color
	Shadow     *Shadow
}

// DrawText draws text word-wrapped to width, each line centred on cx, with
// the top of the block at top. It returns the height of the block.
func (s *Surface) DrawText(text string, style TextStyle, cx, top, width float64) float64 {
	lh := style.LineHeight
	if lh <= 0 {
		lh = 1
	}
	face := s.face(style.Size, style.Bold)
	s.dc.SetFontFace(face)
	lines := s.dc.WordWrap(text, width)
	blockW, blockH := s.dc.MeasureMultilineString(strings.Join(lines, "\n"), lh)
	if blockW < width {
		blockW = width
	}

	paint := func(dc *gg.Context, c color.Color) {
		dc.SetFontFace(face)
		dc.SetColor(c)
		dc.DrawStringWrapped(text, cx, top, 0.5, 0, width, lh, gg.AlignCenter)
	}
	if style.Shadow != nil {
		// descenders reach below the block and glyphs may overhang it
		bounds := image.Rect(int(cx-blockW/2)-1, int(top)-1, int(cx+blockW/2)+1, int(top+blockH+style.Size))
		s.drawShadow(bounds, *style.Shadow, paint)
	}
	s.dc.Push()
	paint(s.dc, style.Color)
	s.dc.Pop()
	return blockH
}
