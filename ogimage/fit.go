package ogimage

import "strconv"

// Measurer reports the size of text word-wrapped to maxWidth at a font
// size and line height. *Surface implements it.
type Measurer interface {
	MeasureWrapped(text string, size, maxWidth, lineHeight float64) (w, h float64)
}

// FitOptions bounds the search of FitText.
type FitOptions struct {
	MaxWidth    float64
	DesiredSize float64
	MinSize     float64
	MaxHeight   float64
	WidthStep   float64 // column narrowing once MinSize is reached
	MaxRounds   int
}

const (
	DefaultWidthStep = 2
	DefaultMaxRounds = 40
)

func (o FitOptions) withDefaults() FitOptions {
	if o.WidthStep <= 0 {
		o.WidthStep = DefaultWidthStep
	}
	if o.MaxRounds <= 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	if o.MinSize <= 0 {
		o.MinSize = 1
	}
	if o.DesiredSize < o.MinSize {
		o.DesiredSize = o.MinSize
	}
	return o
}

// FitResult is the font size and column chosen for a title.
type FitResult struct {
	FontSize   float64
	LineHeight float64
	WrapWidth  float64
	Rounds     int // adjustments made before stopping
}

// Spec formats the result as "<size>px/<line-height>".
func (r FitResult) Spec() string {
	return strconv.FormatFloat(r.FontSize, 'f', -1, 64) + "px/" +
		strconv.FormatFloat(r.LineHeight, 'f', -1, 64)
}

// LineHeightFor gives larger fonts tighter relative leading.
func LineHeightFor(size float64) float64 {
	switch {
	case size > 65:
		return 1.2
	case size > 40:
		return 1.4
	default:
		return 1.5
	}
}

// fitState is the two degrees of freedom of the search.
type fitState struct {
	size  float64
	width float64
}

// FitText finds the largest font size, down to MinSize, at which text
// wrapped to MaxWidth is no taller than MaxHeight. Once the minimum is
// reached it narrows the column by WidthStep instead. After MaxRounds
// adjustments it settles for the current state, so very long titles end
// up at MinSize and may still overflow.
func FitText(m Measurer, text string, opts FitOptions) FitResult {
	opts = opts.withDefaults()
	st := fitState{size: opts.DesiredSize, width: opts.MaxWidth}
	for round := 0; ; round++ {
		res := FitResult{
			FontSize:   st.size,
			LineHeight: LineHeightFor(st.size),
			WrapWidth:  st.width,
			Rounds:     round,
		}
		if round >= opts.MaxRounds {
			return res
		}
		if _, h := m.MeasureWrapped(text, st.size, st.width, res.LineHeight); h <= opts.MaxHeight {
			return res
		}
		switch {
		case st.size-1 >= opts.MinSize:
			st.size--
		case st.width-opts.WidthStep >= opts.WidthStep:
			st.width -= opts.WidthStep
		}
	}
}
