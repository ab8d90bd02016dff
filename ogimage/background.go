package ogimage

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ErrPalette is returned for a palette with fewer than two colours.
var ErrPalette = errors.New("ogimage: palette needs at least two colours")

// CellSize is the edge of one background tile in pixels.
const CellSize = 10

// RandSource picks uniform integers in [0, n). *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

// NewRandSource returns a reproducible source for a seed.
func NewRandSource(seed uint64) RandSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewEntropySource returns a source seeded from the runtime's entropy.
func NewEntropySource() RandSource {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Palette is the set of tile colours.
type Palette []color.Color

// DefaultPalette is the site's purple.
var DefaultPalette = Palette{
	color.RGBA{R: 0x49, G: 0x42, B: 0xaa, A: 0xff},
	color.RGBA{R: 0x5c, G: 0x55, B: 0xd9, A: 0xff},
}

// ParsePalette parses "#rrggbb" or "rrggbb" colours.
func ParsePalette(hex ...string) (Palette, error) {
	p := make(Palette, 0, len(hex))
	for _, h := range hex {
		c, err := parseHexColor(h)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	if len(p) < 2 {
		return nil, ErrPalette
	}
	return p, nil
}

func parseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("ogimage: invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("ogimage: invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// PaintTiledBackground fills width x height with CellSize tiles, each a
// random colour from palette. Tiles are composed off-surface and drawn in
// one pass, so the active clip applies to the whole texture.
func PaintTiledBackground(s *Surface, width, height int, palette Palette, rnd RandSource) error {
	if len(palette) < 2 {
		return ErrPalette
	}
	tiles := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y += CellSize {
		for x := 0; x < width; x += CellSize {
			c := palette[rnd.IntN(len(palette))]
			draw.Draw(tiles, image.Rect(x, y, x+CellSize, y+CellSize), image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	s.dc.DrawImage(tiles, 0, 0)
	return nil
}
