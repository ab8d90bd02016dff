package garden

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/canrau/garden/ogimage"
)

// SiteConfig holds all configuration for a garden server.
type SiteConfig struct {
	Domain    string // Used in download file names (default "CanRau.com")
	URL       string // Canonical URL (default "http://localhost:3000")
	Author    string // Default author drawn in the footer (default "Can Rau")
	SiteLabel string // Footer label (default lower-cased Domain)

	Addr         string // Listen address (default ":3000")
	ContentDir   string // Post tree (default "content")
	CacheDir     string // Rendered images (default "data/ogimage")
	DatabasePath string // Artifact index (default "data/garden.db")

	AvatarPath     string // Local avatar fallback (default "public/avatar.png")
	AvatarURL      string // Remote avatar, tried first when set
	DecorationsDir string // Keyword overlays, one image per keyword (default "public/decorations")
	Palette        []string

	Development bool // Inline Content-Disposition, debug logging
	Watch       bool // Evict cached posts and images when content changes

	PostCacheTTL time.Duration // Post metadata TTL (default 5min)
	AvatarTTL    time.Duration // Remote avatar TTL (default 1h)
	RenderLimit  int           // Cache misses per IP per RenderWindow (default 30)
	RenderWindow time.Duration // (default 1min)
}

func (c *SiteConfig) setDefaults() {
	if c.Domain == "" {
		c.Domain = "CanRau.com"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Author == "" {
		c.Author = "Can Rau"
	}
	if c.SiteLabel == "" {
		c.SiteLabel = strings.ToLower(c.Domain)
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.CacheDir == "" {
		c.CacheDir = "data/ogimage"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/garden.db"
	}
	if c.AvatarPath == "" {
		c.AvatarPath = "public/avatar.png"
	}
	if c.DecorationsDir == "" {
		c.DecorationsDir = "public/decorations"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.AvatarTTL == 0 {
		c.AvatarTTL = time.Hour
	}
	if c.RenderLimit == 0 {
		c.RenderLimit = 30
	}
	if c.RenderWindow == 0 {
		c.RenderWindow = time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the logger (default: a no-op logger).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithRenderer replaces the image generator, mainly for tests.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithGeneratorOptions appends options to the default generator.
func WithGeneratorOptions(opts ...ogimage.Option) Option {
	return func(a *App) {
		a.genOpts = append(a.genOpts, opts...)
	}
}
