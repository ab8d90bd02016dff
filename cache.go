package garden

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/canrau/garden/ogimage"
)

// Renderer produces PNG bytes for a request. *ogimage.Generator
// implements it.
type Renderer interface {
	Generate(ctx context.Context, req ogimage.Request) ([]byte, error)
}

// ArtifactCache stores rendered images on disk under dir and indexes them
// in a Store. Concurrent requests for the same identity render once;
// different identities render in parallel.
type ArtifactCache struct {
	dir    string
	store  *Store
	render Renderer
	logger *zap.Logger
	group  singleflight.Group
}

// NewArtifactCache creates an ArtifactCache rooted at dir.
func NewArtifactCache(dir string, store *Store, r Renderer, logger *zap.Logger) *ArtifactCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactCache{dir: dir, store: store, render: r, logger: logger}
}

// Path returns where id is stored on disk.
func (c *ArtifactCache) Path(id ArtifactID) string {
	return filepath.Join(c.dir, id.RelPath())
}

// Lookup returns the stored bytes of id without rendering.
func (c *ArtifactCache) Lookup(id ArtifactID) ([]byte, bool) {
	data, err := os.ReadFile(c.Path(id))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Get returns the image for req, rendering and storing it on a miss. The
// render outlives cancellation of ctx since other callers may be waiting
// on it. hit reports whether the bytes came from disk.
func (c *ArtifactCache) Get(ctx context.Context, req ogimage.Request) (a Artifact, hit bool, err error) {
	if err := req.Validate(); err != nil {
		return Artifact{}, false, err
	}
	id := IDFor(req)
	if data, ok := c.Lookup(id); ok {
		return Artifact{ID: id, Path: c.Path(id), Bytes: len(data), Data: data}, true, nil
	}

	v, err, _ := c.group.Do(id.String(), func() (any, error) {
		if data, ok := c.Lookup(id); ok {
			return Artifact{ID: id, Path: c.Path(id), Bytes: len(data), Data: data}, nil
		}
		return c.create(context.WithoutCancel(ctx), id, req)
	})
	if err != nil {
		return Artifact{}, false, err
	}
	return v.(Artifact), false, nil
}

func (c *ArtifactCache) create(ctx context.Context, id ArtifactID, req ogimage.Request) (Artifact, error) {
	start := time.Now()
	data, err := c.render.Generate(ctx, req)
	if err != nil {
		return Artifact{}, err
	}
	path := c.Path(id)
	if err := writeAtomic(path, data); err != nil {
		return Artifact{}, err
	}
	a := Artifact{ID: id, Path: path, Bytes: len(data), CreatedAt: time.Now(), Data: data}
	if err := c.store.SaveArtifact(a); err != nil {
		// the file is authoritative; a missing row only affects pruning
		c.logger.Warn("index artifact", zap.String("id", id.String()), zap.Error(err))
	}
	c.logger.Info("ogimage created",
		zap.String("id", id.String()),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)),
	)
	if n, err := c.prune(id); err != nil {
		c.logger.Warn("prune superseded", zap.String("id", id.String()), zap.Error(err))
	} else if n > 0 {
		c.logger.Debug("pruned superseded", zap.String("id", id.String()), zap.Int("count", n))
	}
	return a, nil
}

// writeAtomic writes data next to path and renames it into place.
// Readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("garden: create cache dir: %w", err)
	}
	tmp := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("garden: write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("garden: store artifact: %w", err)
	}
	return nil
}

// prune removes the artifacts id supersedes.
func (c *ArtifactCache) prune(id ArtifactID) (int, error) {
	old, err := c.store.ListSuperseded(id)
	if err != nil {
		return 0, err
	}
	return c.remove(old)
}

// Evict removes every artifact of a post in one language.
func (c *ArtifactCache) Evict(slug string, lang ogimage.Lang) (int, error) {
	all, err := c.store.ListForPost(slug, lang)
	if err != nil {
		return 0, err
	}
	return c.remove(all)
}

// PruneVersions removes artifacts rendered by other pipeline versions.
func (c *ArtifactCache) PruneVersions(version int) (int, error) {
	old, err := c.store.ListOutdated(version)
	if err != nil {
		return 0, err
	}
	return c.remove(old)
}

func (c *ArtifactCache) remove(as []Artifact) (int, error) {
	var errs []error
	n := 0
	for _, a := range as {
		if err := os.Remove(c.Path(a.ID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		if err := c.store.DeleteArtifact(a.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}
