package ogimage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrAvatar wraps failures to obtain the avatar image.
var ErrAvatar = errors.New("ogimage: avatar unavailable")

// ImageSource yields an image on demand. Implementations must be safe
// for concurrent use.
type ImageSource interface {
	Image(ctx context.Context) (image.Image, error)
}

// FileImage reads an image from the local filesystem.
type FileImage struct {
	Path string
}

func (f FileImage) Image(ctx context.Context) (image.Image, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("ogimage: open %s: %w", f.Path, err)
	}
	defer fh.Close()
	img, _, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("ogimage: decode %s: %w", f.Path, err)
	}
	return img, nil
}

// RemoteImage fetches an image over HTTP.
type RemoteImage struct {
	URL    string
	Client *http.Client // nil uses a client with a 10s timeout
}

var defaultClient = &http.Client{Timeout: 10 * time.Second}

func (r RemoteImage) Image(ctx context.Context) (image.Image, error) {
	client := r.Client
	if client == nil {
		client = defaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("ogimage: fetch %s: %w", r.URL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ogimage: fetch %s: %w", r.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ogimage: fetch %s: status %d", r.URL, resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ogimage: decode %s: %w", r.URL, err)
	}
	return img, nil
}

// PlaceholderImage draws initials on a flat square. It never fails.
type PlaceholderImage struct {
	Initials   string
	Background color.Color
	Foreground color.Color
}

const placeholderSize = 256

func (p PlaceholderImage) Image(ctx context.Context) (image.Image, error) {
	s, err := NewSurface(placeholderSize, placeholderSize)
	if err != nil {
		return nil, err
	}
	bg, fg := p.Background, p.Foreground
	if bg == nil {
		bg = DefaultPalette[0]
	}
	if fg == nil {
		fg = color.White
	}
	s.FillRect(0, 0, placeholderSize, placeholderSize, bg)
	if initials := strings.ToUpper(strings.TrimSpace(p.Initials)); initials != "" {
		s.dc.SetFontFace(s.face(placeholderSize/3, true))
		s.dc.SetColor(fg)
		s.dc.DrawStringAnchored(initials, placeholderSize/2, placeholderSize/2, 0.5, 0.5)
	}
	return s.Image(), nil
}

// Initials returns up to two leading letters of the words in name.
func Initials(name string) string {
	var b strings.Builder
	for _, w := range strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == '.' || r == '-' }) {
		if b.Len() >= 2 {
			break
		}
		b.WriteString(string([]rune(w)[:1]))
	}
	return b.String()
}

// FallbackImage tries each source in order and returns the first image.
type FallbackImage struct {
	Sources []ImageSource
	Logger  *zap.Logger
}

func (f FallbackImage) Image(ctx context.Context) (image.Image, error) {
	var errs []error
	for i, src := range f.Sources {
		img, err := src.Image(ctx)
		if err == nil {
			return img, nil
		}
		errs = append(errs, err)
		if f.Logger != nil {
			f.Logger.Warn("image source failed", zap.Int("source", i), zap.Error(err))
		}
	}
	return nil, errors.Join(append([]error{ErrAvatar}, errs...)...)
}

// CachedImage memoises a source for TTL. Failures are not cached.
type CachedImage struct {
	Source ImageSource
	TTL    time.Duration

	mu      sync.Mutex
	img     image.Image
	fetched time.Time
}

func (c *CachedImage) Image(ctx context.Context) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.img != nil && time.Since(c.fetched) < c.TTL {
		return c.img, nil
	}
	img, err := c.Source.Image(ctx)
	if err != nil {
		return nil, err
	}
	c.img, c.fetched = img, time.Now()
	return img, nil
}
