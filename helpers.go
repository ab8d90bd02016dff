package garden

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/canrau/garden/content"
	"github.com/canrau/garden/ogimage"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// OGImagePath is the route path of an image:
// /assets/<lang>/ogimage/v<version>/<size>/<slug>.<rev>.png.
func OGImagePath(lang ogimage.Lang, version int, size ogimage.Size, slug, rev string) string {
	return "/assets/" + url.PathEscape(string(lang)) + "/ogimage/v" + strconv.Itoa(version) + "/" +
		url.PathEscape(string(size)) + "/" + url.PathEscape(slug) + "." + url.PathEscape(rev) + ".png"
}

// OGImageURL returns the absolute, current URL of a post's image.
func OGImageURL(cfg SiteConfig, post content.Post, size ogimage.Size) string {
	p := OGImagePath(ogimage.Lang(post.Lang), ogimage.Version, size, post.Slug, ogimage.RevisionToken(post.Title))
	return strings.TrimRight(cfg.URL, "/") + p
}

// PreviewPath is the route path of a post's preview page.
func PreviewPath(lang ogimage.Lang, slug string) string {
	return "/ogimage/" + url.PathEscape(string(lang)) + "/" + url.PathEscape(slug) + "/"
}

// DownloadName is the file name offered for an image.
func DownloadName(domain, slug string, lang ogimage.Lang, size ogimage.Size) string {
	return domain + "_" + slug + "_" + string(lang) + "_ogimage-" + string(size) + "-v" + strconv.Itoa(ogimage.Version) + ".png"
}

// parseImageFile splits "<slug>.<rev>.png". The revision may be empty,
// which never matches and so redirects to the current one.
func parseImageFile(file string) (slug, rev string, ok bool) {
	name, found := strings.CutSuffix(file, ".png")
	if !found {
		return "", "", false
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		slug, rev = name[:i], name[i+1:]
	} else {
		slug = name
	}
	slug = strings.TrimSpace(slug)
	return slug, rev, slug != ""
}

// parseVersion accepts "v6" or "6".
func parseVersion(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "v"))
	return n, err == nil
}
