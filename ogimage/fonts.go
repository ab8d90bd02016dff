package ogimage

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
)

// fontDPI makes a size of n points render at n*4/3 pixels, the same as the
// CSS pt unit.
const fontDPI = 96

var fonts struct {
	once    sync.Once
	regular *truetype.Font
	bold    *truetype.Font
	err     error
}

// loadFonts parses the embedded monospace families once. Parsed fonts are
// read-only and shared; faces are not, see Surface.face.
func loadFonts() (regular, bold *truetype.Font, err error) {
	fonts.once.Do(func() {
		fonts.regular, fonts.err = truetype.Parse(gomono.TTF)
		if fonts.err != nil {
			fonts.err = fmt.Errorf("ogimage: parse regular font: %w", fonts.err)
			return
		}
		fonts.bold, fonts.err = truetype.Parse(gomonobold.TTF)
		if fonts.err != nil {
			fonts.err = fmt.Errorf("ogimage: parse bold font: %w", fonts.err)
		}
	})
	return fonts.regular, fonts.bold, fonts.err
}

type faceKey struct {
	size float64
	bold bool
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
}
