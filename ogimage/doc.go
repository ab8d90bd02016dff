// Package ogimage renders the Open Graph preview image for a post.
//
// Every image is drawn once at the canonical 1200x630 resolution and
// downscaled for the other size variants, so all sizes look alike. The
// package holds no mutable state between calls: a Generator may be shared
// by concurrent requests, each of which allocates its own Surface.
//
// The HTTP layer decides whether to regenerate or serve a cached image by
// comparing the URL against Version and RevisionToken.
package ogimage
