package garden

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/canrau/garden/content"
	"github.com/canrau/garden/ogimage"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", []string{"blog", "hello"}, "https://example.com/blog/hello/"},
		{"https://example.com/", []string{"a"}, "https://example.com/a/"},
		{"https://example.com", nil, "https://example.com"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"#fff", "", "  ", " #000 "})
	if len(got) != 2 || got[0] != "#fff" || got[1] != "#000" {
		t.Errorf("FilterEmpty = %q", got)
	}
}

func TestOGImagePath(t *testing.T) {
	got := OGImagePath(ogimage.LangEn, 6, ogimage.SizeSmall, "hello-world", "abc")
	if want := "/assets/en/ogimage/v6/small/hello-world.abc.png"; got != want {
		t.Errorf("OGImagePath = %q, want %q", got, want)
	}
}

func TestParseImageFile(t *testing.T) {
	tests := []struct {
		file string
		slug string
		rev  string
		ok   bool
	}{
		{"hello-world.abc.png", "hello-world", "abc", true},
		{"hello-world.png", "hello-world", "", true},
		{"v1.2.abc.png", "v1.2", "abc", true},
		{"caf%C3%A9.abc.png", "café", "abc", true},
		{"hello-world.abc.jpg", "", "", false},
		{".abc.png", "", "abc", false},
		{".png", "", "", false},
	}
	for _, tt := range tests {
		slug, rev, ok := parseImageFile(tt.file)
		if ok != tt.ok || (ok && (slug != tt.slug || rev != tt.rev)) {
			t.Errorf("parseImageFile(%q) = %q, %q, %v; want %q, %q, %v", tt.file, slug, rev, ok, tt.slug, tt.rev, tt.ok)
		}
	}
}

func TestParseVersion(t *testing.T) {
	for s, want := range map[string]int{"v6": 6, "6": 6, "v12": 12} {
		if got, ok := parseVersion(s); !ok || got != want {
			t.Errorf("parseVersion(%q) = %d, %v", s, got, ok)
		}
	}
	for _, s := range []string{"", "v", "latest", "vx"} {
		if _, ok := parseVersion(s); ok {
			t.Errorf("parseVersion(%q) should fail", s)
		}
	}
}

func TestDownloadName(t *testing.T) {
	got := DownloadName("CanRau.com", "hello-world", ogimage.LangEn, ogimage.SizeSmall)
	if want := "CanRau.com_hello-world_en_ogimage-small-v6.png"; got != want {
		t.Errorf("DownloadName = %q, want %q", got, want)
	}
}

func TestDecorationsFromDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"fly.io.png", "Go.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	ds, err := DecorationsFromDir(dir)
	if err != nil {
		t.Fatalf("DecorationsFromDir failed: %v", err)
	}
	if len(ds) != 2 || ds[0].Keyword != "Go" || ds[1].Keyword != "fly.io" {
		t.Fatalf("decorations = %+v", ds)
	}
	if !ds[1].Matches("Deploying to Fly.io") {
		t.Error("fly.io decoration should match")
	}

	ds, err = DecorationsFromDir(filepath.Join(dir, "missing"))
	if err != nil || ds != nil {
		t.Errorf("missing dir = %v, %v; want nil, nil", ds, err)
	}
}

func TestRequestFor(t *testing.T) {
	a := New(SiteConfig{})
	post := content.Post{Slug: "hello-world", Lang: "en", Title: "Hello World", Status: content.StatusPublished}
	req := a.requestFor(post, ogimage.LangEn, ogimage.SizeDefault)
	if req.Status != "" || req.Author != "Can Rau" || req.Slug != "hello-world" {
		t.Errorf("published request = %+v", req)
	}

	post.Status, post.Author = "idea", "Guest"
	req = a.requestFor(post, ogimage.LangEn, ogimage.SizeSmall)
	if req.Status != "idea" || req.Author != "Guest" {
		t.Errorf("draft request = %+v", req)
	}
}

func TestNewGeneratorFallsBackToPlaceholderAvatar(t *testing.T) {
	dir := t.TempDir()
	a := New(SiteConfig{
		AvatarPath:     filepath.Join(dir, "missing.png"),
		DecorationsDir: filepath.Join(dir, "decorations"),
	})
	g, err := a.NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	data, err := g.Generate(t.Context(), ogimage.Request{
		Title: "Hello World", Slug: "hello-world", Lang: ogimage.LangEn, Size: ogimage.SizeSmall,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected PNG bytes")
	}
}

func TestNewGeneratorRejectsBadPalette(t *testing.T) {
	a := New(SiteConfig{Palette: []string{"#fff", "not-a-colour"}})
	if _, err := a.NewGenerator(); err == nil {
		t.Error("expected palette error")
	}
}
