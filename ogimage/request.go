package ogimage

import (
	"errors"
	"strings"
)

var (
	ErrMissingTitle    = errors.New("ogimage: title is required")
	ErrMissingSlug     = errors.New("ogimage: slug is required")
	ErrUnsupportedSize = errors.New("ogimage: unsupported size")
	ErrUnsupportedLang = errors.New("ogimage: unsupported language")

	// ErrGenerate wraps every failure that happens after a request has
	// been validated. Callers map it to a 500 response.
	ErrGenerate = errors.New("ogimage: error creating the image")
)

// Lang is a supported content locale.
type Lang string

const LangEn Lang = "en"

// DefaultLang is used when a request names an unknown locale.
const DefaultLang = LangEn

// SupportedLangs lists every locale content is published in.
var SupportedLangs = []Lang{LangEn}

// ParseLang reports whether s names a supported locale.
func ParseLang(s string) (Lang, bool) {
	for _, l := range SupportedLangs {
		if string(l) == s {
			return l, true
		}
	}
	return Lang(s), false
}

// Request describes one image to render.
type Request struct {
	Title  string
	Slug   string
	Lang   Lang
	Size   Size
	Status string // optional, drawn as a badge
	Author string // optional, drawn in the footer
}

// Validate checks the preconditions of Generate. No image is produced for
// an invalid request.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(r.Slug) == "" {
		return ErrMissingSlug
	}
	if _, ok := Variants[r.Size]; !ok {
		return ErrUnsupportedSize
	}
	if _, ok := ParseLang(string(r.Lang)); !ok {
		return ErrUnsupportedLang
	}
	return nil
}
