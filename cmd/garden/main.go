package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/canrau/garden"
	"github.com/canrau/garden/logging"
	"github.com/canrau/garden/ogimage"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	okColor   = color.New(color.FgGreen)
	skipColor = color.New(color.FgCyan)
	errColor  = color.New(color.FgRed, color.Bold)
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// .env is optional; the environment wins over it
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "generate":
		err = runGenerate(os.Args[2:])
	case "prune":
		err = runPrune()
	case "rev":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: garden rev <title>")
			os.Exit(1)
		}
		fmt.Println(ogimage.RevisionToken(strings.Join(os.Args[2:], " ")))
	case "version":
		fmt.Printf("garden %s (ogimage v%d)\n", version, ogimage.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`garden - Open Graph images for a digital garden

Usage:
  garden <command> [arguments]

Commands:
  serve               Serve images over HTTP
  generate [slug...]  Render every size of the given posts, or of all posts
  prune               Remove images rendered by older pipeline versions
  rev <title>         Print the revision token of a title
  version             Print the garden version
  help                Show this help message

Environment:
  SITE_DOMAIN, SITE_URL, SITE_AUTHOR, ADDR, CONTENT_DIR, CACHE_DIR,
  DATABASE_PATH, AVATAR_PATH, AVATAR_URL, DECORATIONS_DIR, PALETTE,
  RENDER_LIMIT, WATCH, APP_ENV, LOG_FILE, LOG_LEVEL

Examples:
  garden serve
  garden generate hello-world
  garden rev "Hello World"`)
}

func newApp() (*garden.App, *zap.Logger, error) {
	cfg, err := configFromEnv()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(logging.Config{
		Development: cfg.Development,
		File:        os.Getenv("LOG_FILE"),
		Level:       os.Getenv("LOG_LEVEL"),
	})
	if err != nil {
		return nil, nil, err
	}
	return garden.New(cfg, garden.WithLogger(logger)), logger, nil
}

func runServe() error {
	app, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return errors.Join(err, app.Close())
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func runGenerate(slugs []string) error {
	app, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(slugs) == 1 && slugs[0] == "all" {
		slugs = nil
	}
	start := time.Now()
	stats, err := app.Prewarm(ctx, ogimage.DefaultLang, slugs, func(id garden.ArtifactID, hit bool, err error) {
		switch {
		case err != nil:
			errColor.Printf("  ✗ %s: %v\n", id, err)
		case hit:
			skipColor.Printf("  = %s\n", id)
		default:
			okColor.Printf("  ✓ %s\n", id)
		}
	})
	if err != nil {
		return err
	}
	fmt.Printf("\n%d rendered, %d cached, %d failed in %s\n",
		stats.Rendered, stats.Cached, stats.Failed, time.Since(start).Round(time.Millisecond))
	if stats.Failed > 0 {
		return fmt.Errorf("%d images failed", stats.Failed)
	}
	return nil
}

func runPrune() error {
	app, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer app.Close()

	if err := app.Init(); err != nil {
		return err
	}
	n, err := app.Artifacts.PruneVersions(ogimage.Version)
	if err != nil {
		return err
	}
	okColor.Printf("Removed %d images older than v%d\n", n, ogimage.Version)
	return nil
}
