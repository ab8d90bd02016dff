package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the extension of post source files.
const Ext = ".mdx"

// Source loads a single post.
type Source interface {
	Load(slug, lang string) (Post, error)
}

// Loader reads posts from a directory tree.
type Loader struct {
	Root string
}

// NewLoader returns a Loader rooted at root.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// ValidSlug reports whether slug names a single directory below the root.
func ValidSlug(slug string) bool {
	if slug == "" || slug == "." || slug == ".." {
		return false
	}
	return !strings.ContainsAny(slug, "/\\\x00")
}

// Path returns the source file of a post.
func (l *Loader) Path(slug, lang string) (string, error) {
	if !ValidSlug(slug) || !ValidSlug(lang) {
		return "", ErrInvalidSlug
	}
	return filepath.Join(l.Root, slug, lang+Ext), nil
}

// Load reads the frontmatter of slug in lang. A missing file or invalid
// slug yields ErrNotFound.
func (l *Loader) Load(slug, lang string) (Post, error) {
	path, err := l.Path(slug, lang)
	if err != nil {
		return Post{}, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Post{}, fmt.Errorf("%w: %s/%s", ErrNotFound, slug, lang)
	}
	if err != nil {
		return Post{}, fmt.Errorf("content: read %s: %w", path, err)
	}
	p, err := ParseFrontmatter(data)
	if err != nil {
		return Post{}, fmt.Errorf("content: %s: %w", path, err)
	}
	p.Slug = slug
	if p.Lang == "" {
		p.Lang = lang
	}
	return p, nil
}

// List returns every post available in lang, newest first. Directories
// without a file for lang are skipped.
func (l *Loader) List(lang string) ([]Post, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, fmt.Errorf("content: list %s: %w", l.Root, err)
	}
	var posts []Post
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p, err := l.Load(e.Name(), lang)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].LastModified(), posts[j].LastModified()
		if !a.Equal(b) {
			return a.After(b)
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}
