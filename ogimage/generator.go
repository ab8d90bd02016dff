package ogimage

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Generator renders Open Graph images. It is safe for concurrent use.
type Generator struct {
	avatar      ImageSource
	palette     Palette
	newRand     func() RandSource
	siteLabel   string
	decorations []Decoration
	logger      *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithAvatar sets the avatar source. The default is a placeholder showing
// the initials of the site label.
func WithAvatar(src ImageSource) Option {
	return func(g *Generator) { g.avatar = src }
}

// WithPalette sets the background tile colours.
func WithPalette(p Palette) Option {
	return func(g *Generator) { g.palette = p }
}

// WithRandSource sets the factory called once per render for the
// background texture. Supply a seeded source for reproducible output.
func WithRandSource(fn func() RandSource) Option {
	return func(g *Generator) { g.newRand = fn }
}

// WithSiteLabel sets the footer text.
func WithSiteLabel(label string) Option {
	return func(g *Generator) { g.siteLabel = label }
}

// WithDecorations adds keyword-triggered overlays.
func WithDecorations(ds ...Decoration) Option {
	return func(g *Generator) { g.decorations = append(g.decorations, ds...) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator returns a Generator with the given options applied.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		palette:   DefaultPalette,
		newRand:   NewEntropySource,
		siteLabel: "canrau.com",
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.avatar == nil {
		g.avatar = PlaceholderImage{Initials: Initials(g.siteLabel)}
	}
	return g
}

var (
	borderColor = color.White
	panelColor  = color.RGBA{R: 0x27, G: 0x27, B: 0x29, A: 0xff} // hsl(240, 2.5%, 15.7%)
	textColor   = color.White
	badgeColor  = color.RGBA{R: 0x5c, G: 0x55, B: 0xd9, A: 0xff}

	titleShadow  = Shadow{OffsetX: 7, OffsetY: 7, Blur: 20, Color: color.Black}
	avatarShadow = Shadow{OffsetX: 4, OffsetY: 4, Blur: 13, Color: color.Black}
	footerShadow = Shadow{OffsetX: 5, OffsetY: 5, Blur: 5, Color: color.Black}
)

// MinTitleSize is the smallest title font size in points.
const MinTitleSize = 50

// renderQuality selects zlib's default level for rendered images.
const renderQuality = 0.5

// layout holds the canonical geometry, derived from the default variant.
type layout struct {
	width, height float64
	padding       float64
	centerX       float64
	row           float64 // a third of the height
	titleTop      float64
	titleWidth    float64
	avatarSize    float64
	avatarTop     float64
	border        float64
	inset         float64
}

func canonicalLayout() layout {
	v := Variants[SizeDefault]
	w, h := float64(v.Width), float64(v.Height)
	row := h / 3
	return layout{
		width:      w,
		height:     h,
		padding:    float64(v.Padding),
		centerX:    w / 2,
		row:        row,
		titleTop:   70,
		titleWidth: w - 50,
		avatarSize: math.Floor(w / 8),
		avatarTop:  row + row/2 + float64(v.Padding),
		border:     math.Floor(w / 63),
		inset:      w / 60,
	}
}

// TitleFitOptions returns the fitting bounds used for titles.
func TitleFitOptions() FitOptions {
	l := canonicalLayout()
	return FitOptions{
		MaxWidth:    l.titleWidth,
		DesiredSize: math.Floor(l.width / 14),
		MinSize:     MinTitleSize,
		MaxHeight:   l.row + 90,
		WidthStep:   DefaultWidthStep,
		MaxRounds:   DefaultMaxRounds,
	}
}

// Generate renders req and returns PNG bytes at the requested size.
// Failures after validation wrap ErrGenerate; no partial image is returned.
func (g *Generator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	buf, fit, err := g.render(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	if req.Size != SizeDefault {
		if buf, err = ResizeToVariant(buf, req.Size); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGenerate, err)
		}
	}
	g.logger.Debug("ogimage rendered",
		zap.String("slug", req.Slug),
		zap.String("lang", string(req.Lang)),
		zap.String("size", string(req.Size)),
		zap.String("font", fit.Spec()),
		zap.Int("fit_rounds", fit.Rounds),
		zap.Int("bytes", len(buf)),
		zap.Duration("took", time.Since(start)),
	)
	return buf, nil
}

func (g *Generator) render(ctx context.Context, req Request) ([]byte, FitResult, error) {
	l := canonicalLayout()
	v := Variants[SizeDefault]
	s, err := NewSurface(v.Width, v.Height)
	if err != nil {
		return nil, FitResult{}, err
	}

	err = s.WithClip(RoundedRectPath(0, 0, l.width, l.height, l.width/48), func() error {
		return PaintTiledBackground(s, v.Width, v.Height, g.palette, g.newRand())
	})
	if err != nil {
		return nil, FitResult{}, err
	}

	edge := l.border - 2
	err = s.WithClip(RoundedRectPath(edge, edge, l.width-2*edge, l.height-2*edge, l.width/100), func() error {
		s.FillRect(l.border, l.border, l.width-2*l.border, l.height-2*l.border, borderColor)
		s.FillRect(l.inset, l.inset, l.width-2*l.inset, l.height-2*l.inset, panelColor)
		for _, d := range g.decorations {
			if !d.Matches(req.Title) {
				continue
			}
			if err := drawDecoration(ctx, s, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, FitResult{}, err
	}

	if req.Status != "" {
		g.drawStatus(s, l, req.Status)
	}

	fit := FitText(s, req.Title, TitleFitOptions())
	s.DrawText(req.Title, TextStyle{
		Size:       fit.FontSize,
		Bold:       true,
		LineHeight: fit.LineHeight,
		Color:      textColor,
		Shadow:     &titleShadow,
	}, l.centerX, l.titleTop, fit.WrapWidth)

	avatar, err := g.avatar.Image(ctx)
	if err != nil {
		return nil, fit, fmt.Errorf("%w: %w", ErrAvatar, err)
	}
	r := l.avatarSize / 2
	if err := DrawCircularImage(s, avatar, l.centerX, l.avatarTop+r, l.avatarSize, &avatarShadow); err != nil {
		return nil, fit, err
	}

	footer := g.siteLabel
	if author := strings.TrimSpace(req.Author); author != "" {
		footer = author + " · " + footer
	}
	s.DrawText(footer, TextStyle{
		Size:   math.Floor(l.width / 34),
		Color:  textColor,
		Shadow: &footerShadow,
	}, l.centerX, l.avatarTop+l.avatarSize+l.padding, l.titleWidth)

	buf, err := s.PNG(renderQuality)
	if err != nil {
		return nil, fit, err
	}
	return buf, fit, nil
}

// drawStatus draws a pill in the top-right corner of the panel.
func (g *Generator) drawStatus(s *Surface, l layout, status string) {
	label := strings.ToUpper(status)
	const size = 14
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.SetFontFace(s.face(size, true))
	tw, th := s.dc.MeasureString(label)
	padX, padY := 14.0, 8.0
	w, h := tw+2*padX, th+2*padY
	x := l.width - l.inset - l.padding - w
	y := l.inset + l.padding
	s.dc.DrawRoundedRectangle(x, y, w, h, h/2)
	s.dc.SetColor(badgeColor)
	s.dc.Fill()
	s.dc.SetColor(textColor)
	s.dc.DrawStringAnchored(label, x+w/2, y+h/2, 0.5, 0.5)
}
