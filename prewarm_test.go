package garden

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/canrau/garden/ogimage"
)

func TestPrewarmAll(t *testing.T) {
	r := &fakeRenderer{}
	a := newTestApp(t, SiteConfig{}, r)

	var reported atomic.Int32
	stats, err := a.Prewarm(context.Background(), ogimage.LangEn, nil, func(id ArtifactID, hit bool, err error) {
		reported.Add(1)
	})
	if err != nil {
		t.Fatalf("Prewarm failed: %v", err)
	}
	if stats != (PrewarmStats{Rendered: 4}) {
		t.Errorf("stats = %+v, want 4 rendered", stats)
	}
	if reported.Load() != 4 {
		t.Errorf("progress calls = %d, want 4", reported.Load())
	}

	stats, err = a.Prewarm(context.Background(), ogimage.LangEn, nil, nil)
	if err != nil {
		t.Fatalf("Prewarm failed: %v", err)
	}
	if stats != (PrewarmStats{Cached: 4}) {
		t.Errorf("second run = %+v, want 4 cached", stats)
	}
	if n := r.calls.Load(); n != 4 {
		t.Errorf("renders = %d, want 4", n)
	}
}

func TestPrewarmSlugs(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, &fakeRenderer{})

	stats, err := a.Prewarm(context.Background(), ogimage.LangEn, []string{"hello-world", "missing"}, nil)
	if err != nil {
		t.Fatalf("Prewarm failed: %v", err)
	}
	if stats.Rendered != 2 {
		t.Errorf("stats = %+v, want 2 rendered", stats)
	}

	if _, err := a.Prewarm(context.Background(), ogimage.LangEn, []string{"missing"}, nil); err == nil {
		t.Error("expected an error when no slug exists")
	}
}

func TestPrewarmCountsFailures(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, &fakeRenderer{err: context.DeadlineExceeded})
	stats, err := a.Prewarm(context.Background(), ogimage.LangEn, nil, nil)
	if err != nil {
		t.Fatalf("Prewarm failed: %v", err)
	}
	if stats.Failed != 4 {
		t.Errorf("stats = %+v, want 4 failed", stats)
	}
}
