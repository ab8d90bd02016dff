// Package garden serves the Open Graph images of a digital garden built
// with Go, Echo, and templ. It reads post metadata from a content tree,
// renders images with package ogimage, and keeps them in a file cache
// indexed in SQLite.
package garden

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/canrau/garden/content"
	"github.com/canrau/garden/ogimage"
)

// App is the central garden application. It wires together the store,
// caches, generator, handlers, and middleware.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Loader    *content.Loader
	Posts     *content.Cache
	Artifacts *ArtifactCache
	Logger    *zap.Logger

	renderer     Renderer
	genOpts      []ogimage.Option
	limiter      *RenderLimiter
	watcher      *content.Watcher
	customRoutes []func(*App)
	initialized  bool
}

// New creates a new garden App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Logger: zap.NewNop(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store, builds the generator and caches, and registers
// middleware and routes. It is called by Start; commands that only
// render call it directly.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("garden: init store: %w", err)
	}
	a.Store = store

	a.Loader = content.NewLoader(a.Config.ContentDir)
	a.Posts = content.NewCache(a.Loader, a.Config.PostCacheTTL)

	if a.renderer == nil {
		gen, err := a.NewGenerator()
		if err != nil {
			return fmt.Errorf("garden: init generator: %w", err)
		}
		a.renderer = gen
	}
	a.Artifacts = NewArtifactCache(a.Config.CacheDir, a.Store, a.renderer, a.Logger.Named("cache"))
	a.limiter = NewRenderLimiter(a.Config.RenderLimit, a.Config.RenderWindow)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// NewGenerator builds the image generator from the configuration. The
// avatar is tried remote first, then from disk, then as initials.
func (a *App) NewGenerator() (*ogimage.Generator, error) {
	var sources []ogimage.ImageSource
	if a.Config.AvatarURL != "" {
		sources = append(sources, &ogimage.CachedImage{
			Source: ogimage.RemoteImage{URL: a.Config.AvatarURL},
			TTL:    a.Config.AvatarTTL,
		})
	}
	sources = append(sources,
		&ogimage.CachedImage{Source: ogimage.FileImage{Path: a.Config.AvatarPath}, TTL: a.Config.AvatarTTL},
		ogimage.PlaceholderImage{Initials: ogimage.Initials(a.Config.Author)},
	)

	opts := []ogimage.Option{
		ogimage.WithAvatar(ogimage.FallbackImage{Sources: sources, Logger: a.Logger.Named("avatar")}),
		ogimage.WithSiteLabel(a.Config.SiteLabel),
		ogimage.WithLogger(a.Logger.Named("ogimage")),
	}
	if palette := FilterEmpty(a.Config.Palette); len(palette) > 0 {
		p, err := ogimage.ParsePalette(palette...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ogimage.WithPalette(p))
	}
	decorations, err := DecorationsFromDir(a.Config.DecorationsDir)
	if err != nil {
		return nil, err
	}
	if len(decorations) > 0 {
		opts = append(opts, ogimage.WithDecorations(decorations...))
	}
	return ogimage.NewGenerator(append(opts, a.genOpts...)...), nil
}

// requestFor maps a post to the image request for size. Unpublished posts
// carry their status as a badge.
func (a *App) requestFor(post content.Post, lang ogimage.Lang, size ogimage.Size) ogimage.Request {
	req := ogimage.Request{
		Title:  post.Title,
		Slug:   post.Slug,
		Lang:   lang,
		Size:   size,
		Author: post.Author,
	}
	if req.Author == "" {
		req.Author = a.Config.Author
	}
	if !post.IsPublished() {
		req.Status = post.Status
	}
	return req
}

// Watch starts evicting cached posts and images when their source files
// change.
func (a *App) Watch() error {
	w, err := content.NewWatcher(a.Config.ContentDir, 0, a.onContentChange, a.Logger.Named("watcher"))
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Close()
		return err
	}
	a.watcher = w
	return nil
}

func (a *App) onContentChange(slug, lang string) {
	a.Posts.Invalidate(slug, lang)
	n, err := a.Artifacts.Evict(slug, ogimage.Lang(lang))
	if err != nil {
		a.Logger.Warn("evict artifacts", zap.String("slug", slug), zap.String("lang", lang), zap.Error(err))
		return
	}
	a.Logger.Info("content changed", zap.String("slug", slug), zap.String("lang", lang), zap.Int("evicted", n))
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if a.Config.Watch {
		if err := a.Watch(); err != nil {
			return fmt.Errorf("garden: watch content: %w", err)
		}
	}
	a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("content", a.Config.ContentDir))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
		a.watcher = nil
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
		a.Store = nil
	}
	return errors.Join(errs...)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("garden: required environment variable %s is not set", key)
	}
	return v
}
