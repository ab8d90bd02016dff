package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/canrau/garden"
)

// configFromEnv reads the site configuration. Unset variables keep the
// garden defaults.
func configFromEnv() (garden.SiteConfig, error) {
	cfg := garden.SiteConfig{
		Domain:         os.Getenv("SITE_DOMAIN"),
		URL:            os.Getenv("SITE_URL"),
		Author:         os.Getenv("SITE_AUTHOR"),
		Addr:           os.Getenv("ADDR"),
		ContentDir:     os.Getenv("CONTENT_DIR"),
		CacheDir:       os.Getenv("CACHE_DIR"),
		DatabasePath:   os.Getenv("DATABASE_PATH"),
		AvatarPath:     os.Getenv("AVATAR_PATH"),
		AvatarURL:      os.Getenv("AVATAR_URL"),
		DecorationsDir: os.Getenv("DECORATIONS_DIR"),
		Palette:        garden.FilterEmpty(strings.Split(os.Getenv("PALETTE"), ",")),
		Development:    garden.EnvOr("APP_ENV", "production") == "development",
	}
	if v := os.Getenv("RENDER_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("RENDER_LIMIT: %w", err)
		}
		cfg.RenderLimit = n
	}
	watch, err := strconv.ParseBool(garden.EnvOr("WATCH", strconv.FormatBool(cfg.Development)))
	if err != nil {
		return cfg, fmt.Errorf("WATCH: %w", err)
	}
	cfg.Watch = watch
	return cfg, nil
}
