package ogimage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
)

func seeded() Option {
	return WithRandSource(func() RandSource { return NewRandSource(1) })
}

func decodeSize(t *testing.T, buf []byte) (int, int) {
	t.Helper()
	if !bytes.HasPrefix(buf, pngSignature) {
		t.Fatal("output is not a PNG")
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestGenerateHelloWorld(t *testing.T) {
	g := NewGenerator(seeded())
	buf, err := g.Generate(context.Background(), Request{
		Title: "Hello World",
		Slug:  "hello-world",
		Lang:  LangEn,
		Size:  SizeDefault,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if w, h := decodeSize(t, buf); w != 1200 || h != 630 {
		t.Errorf("size = %dx%d, want 1200x630", w, h)
	}
}

func TestGenerateSmall(t *testing.T) {
	g := NewGenerator(seeded())
	buf, err := g.Generate(context.Background(), Request{
		Title:  "Hello World",
		Slug:   "hello-world",
		Lang:   LangEn,
		Size:   SizeSmall,
		Status: "draft",
		Author: "Can Rau",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if w, h := decodeSize(t, buf); w != 504 || h != 265 {
		t.Errorf("size = %dx%d, want 504x265", w, h)
	}
}

func TestGenerateVeryLongTitle(t *testing.T) {
	g := NewGenerator(seeded())
	title := strings.Repeat("An unreasonably long post title ", 12)
	buf, err := g.Generate(context.Background(), Request{Title: title, Slug: "long", Lang: LangEn, Size: SizeDefault})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if w, h := decodeSize(t, buf); w != 1200 || h != 630 {
		t.Errorf("size = %dx%d, want 1200x630", w, h)
	}
}

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	g := NewGenerator(seeded())
	req := Request{Title: "Same", Slug: "same", Lang: LangEn, Size: SizeSmall}
	a, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("seeded renders differ")
	}
}

func TestGenerateRejectsInvalid(t *testing.T) {
	g := NewGenerator(seeded())
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"no title", Request{Slug: "x", Lang: LangEn, Size: SizeDefault}, ErrMissingTitle},
		{"no slug", Request{Title: "x", Lang: LangEn, Size: SizeDefault}, ErrMissingSlug},
		{"bad size", Request{Title: "x", Slug: "x", Lang: LangEn, Size: "tiny"}, ErrUnsupportedSize},
		{"bad lang", Request{Title: "x", Slug: "x", Lang: "xx", Size: SizeDefault}, ErrUnsupportedLang},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := g.Generate(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if errors.Is(err, ErrGenerate) {
				t.Error("validation errors must not wrap ErrGenerate")
			}
			if buf != nil {
				t.Error("no image expected")
			}
		})
	}
}

func TestGenerateAvatarFailure(t *testing.T) {
	g := NewGenerator(seeded(), WithAvatar(FileImage{Path: "testdata/missing.png"}))
	buf, err := g.Generate(context.Background(), Request{Title: "x", Slug: "x", Lang: LangEn, Size: SizeDefault})
	if !errors.Is(err, ErrGenerate) || !errors.Is(err, ErrAvatar) {
		t.Fatalf("err = %v, want ErrGenerate and ErrAvatar", err)
	}
	if buf != nil {
		t.Error("no partial image expected")
	}
}

type countingSource struct {
	calls int
	err   error
}

func (c *countingSource) Image(ctx context.Context) (image.Image, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return PlaceholderImage{Initials: "F"}.Image(ctx)
}

func TestGenerateDecorations(t *testing.T) {
	fly := &countingSource{}
	broken := &countingSource{err: errors.New("gone")}
	g := NewGenerator(seeded(), WithDecorations(
		DefaultDecoration("fly.io", fly),
		DefaultDecoration("kubernetes", broken),
	))

	_, err := g.Generate(context.Background(), Request{Title: "Deploying to Fly.io", Slug: "fly", Lang: LangEn, Size: SizeDefault})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if fly.calls != 1 || broken.calls != 0 {
		t.Errorf("calls = fly %d, broken %d; want 1, 0", fly.calls, broken.calls)
	}

	_, err = g.Generate(context.Background(), Request{Title: "Kubernetes at home", Slug: "k8s", Lang: LangEn, Size: SizeDefault})
	if !errors.Is(err, ErrGenerate) {
		t.Errorf("err = %v, want ErrGenerate", err)
	}
}
