// Package content reads post metadata from a content tree laid out as
// <root>/<slug>/<lang>.mdx. Only the YAML frontmatter is read; bodies are
// never compiled.
package content

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned when no post exists for a slug and lang.
	ErrNotFound = errors.New("content: post not found")

	ErrNoFrontmatter = errors.New("content: missing frontmatter")
	ErrInvalidSlug   = errors.New("content: invalid slug")
)

// StatusPublished marks a post as public. Other statuses (draft,
// idea, ...) are drawn as a badge on the image.
const StatusPublished = "published"

// Post is the frontmatter of one post in one language.
type Post struct {
	Slug        string    `yaml:"-"` // directory name
	Lang        string    `yaml:"lang"`
	Permalink   string    `yaml:"slug"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Status      string    `yaml:"status"`
	Author      string    `yaml:"author"`
	Created     time.Time `yaml:"created"`
	Published   time.Time `yaml:"published"`
	Updated     time.Time `yaml:"updated"`
}

// IsPublished reports whether the post is public.
func (p Post) IsPublished() bool {
	return strings.EqualFold(p.Status, StatusPublished)
}

// LastModified returns the newest of the post's dates.
func (p Post) LastModified() time.Time {
	for _, t := range []time.Time{p.Updated, p.Published, p.Created} {
		if !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

// ParseFrontmatter decodes the YAML block between the leading "---"
// fence lines of data.
func ParseFrontmatter(data []byte) (Post, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		block  bytes.Buffer
		opened bool
		closed bool
	)
	for sc.Scan() {
		line := sc.Text()
		if !opened {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if strings.TrimRight(line, " \t") != "---" {
				return Post{}, ErrNoFrontmatter
			}
			opened = true
			continue
		}
		if strings.TrimRight(line, " \t") == "---" {
			closed = true
			break
		}
		block.WriteString(line)
		block.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return Post{}, fmt.Errorf("content: scan frontmatter: %w", err)
	}
	if !closed {
		return Post{}, ErrNoFrontmatter
	}

	var p Post
	if err := yaml.Unmarshal(block.Bytes(), &p); err != nil {
		return Post{}, fmt.Errorf("content: parse frontmatter: %w", err)
	}
	return p, nil
}
