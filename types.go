package garden

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/canrau/garden/ogimage"
)

// ArtifactID identifies one rendered image. A new title or pipeline
// version yields a new identity; artifacts are never rewritten in place.
type ArtifactID struct {
	Slug     string
	Lang     ogimage.Lang
	Size     ogimage.Size
	Revision string
	Version  int
}

// IDFor derives the identity of the image req renders to.
func IDFor(req ogimage.Request) ArtifactID {
	return ArtifactID{
		Slug:     strings.TrimSpace(req.Slug),
		Lang:     req.Lang,
		Size:     req.Size,
		Revision: ogimage.RevisionToken(req.Title),
		Version:  ogimage.Version,
	}
}

func (id ArtifactID) String() string {
	return fmt.Sprintf("%s/%s/v%d/%s/%s.%s", id.Lang, id.Slug, id.Version, id.Size, id.Slug, id.Revision)
}

// RelPath is the artifact's location below the cache directory:
// <lang>/v<version>/<size>/<slug>.<rev>.png.
func (id ArtifactID) RelPath() string {
	return filepath.Join(string(id.Lang), "v"+strconv.Itoa(id.Version), string(id.Size),
		url.PathEscape(id.Slug)+"."+id.Revision+".png")
}

// Artifact is a rendered image and its index entry.
type Artifact struct {
	ID        ArtifactID
	Path      string
	Bytes     int
	CreatedAt time.Time
	Data      []byte // nil for index-only reads
}
