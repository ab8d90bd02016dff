package ogimage

import "sort"

// Size names an output resolution preset.
type Size string

const (
	SizeDefault Size = "default"
	SizeSmall   Size = "small"
)

// Variant holds the pixel dimensions of a Size.
type Variant struct {
	Width   int
	Height  int
	Padding int
}

// Variants is the closed set of supported sizes. SizeDefault is the
// canonical render; the others are downscales of it.
var Variants = map[Size]Variant{
	SizeDefault: {Width: 1200, Height: 630, Padding: 20},
	SizeSmall:   {Width: 504, Height: 265, Padding: 40},
}

// ParseSize reports whether s names a supported size.
func ParseSize(s string) (Size, bool) {
	size := Size(s)
	_, ok := Variants[size]
	return size, ok
}

// SupportedSizes returns the supported sizes in a stable order.
func SupportedSizes() []Size {
	sizes := make([]Size, 0, len(Variants))
	for s := range Variants {
		sizes = append(sizes, s)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	return sizes
}
