package garden

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/canrau/garden/content"
	"github.com/canrau/garden/ogimage"
)

// PrewarmStats summarises a Prewarm run.
type PrewarmStats struct {
	Rendered int
	Cached   int
	Failed   int
}

// PrewarmFunc is called once per image from concurrent goroutines.
type PrewarmFunc func(id ArtifactID, hit bool, err error)

// Prewarm renders every size of the given posts, or of all posts in lang
// when slugs is empty. Individual failures are counted and reported to
// progress but do not stop the run; an error is returned only when the
// posts cannot be listed or ctx is cancelled.
func (a *App) Prewarm(ctx context.Context, lang ogimage.Lang, slugs []string, progress PrewarmFunc) (PrewarmStats, error) {
	if err := a.Init(); err != nil {
		return PrewarmStats{}, err
	}
	posts, err := a.prewarmPosts(lang, slugs)
	if err != nil {
		return PrewarmStats{}, err
	}

	var (
		mu    sync.Mutex
		stats PrewarmStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, post := range posts {
		for _, size := range ogimage.SupportedSizes() {
			req := a.requestFor(post, lang, size)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				_, hit, err := a.Artifacts.Get(gctx, req)
				mu.Lock()
				switch {
				case err != nil:
					stats.Failed++
				case hit:
					stats.Cached++
				default:
					stats.Rendered++
				}
				mu.Unlock()
				if err != nil {
					a.Logger.Warn("prewarm failed", zap.String("slug", req.Slug), zap.String("size", string(req.Size)), zap.Error(err))
				}
				if progress != nil {
					progress(IDFor(req), hit, err)
				}
				return nil
			})
		}
	}
	err = g.Wait()
	return stats, err
}

func (a *App) prewarmPosts(lang ogimage.Lang, slugs []string) ([]content.Post, error) {
	if len(slugs) == 0 {
		return a.Loader.List(string(lang))
	}
	posts := make([]content.Post, 0, len(slugs))
	var errs []error
	for _, slug := range slugs {
		p, err := a.Loader.Load(slug, string(lang))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		posts = append(posts, p)
	}
	if len(posts) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		a.Logger.Warn("prewarm skipped", zap.Error(err))
	}
	return posts, nil
}
