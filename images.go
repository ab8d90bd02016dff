package garden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/canrau/garden/ogimage"
)

var decorationExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// DecorationsFromDir builds one decoration per image in dir, keyed on the
// file name without extension: fly.io.png decorates titles mentioning
// "fly.io". A missing dir yields no decorations.
func DecorationsFromDir(dir string) ([]ogimage.Decoration, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("garden: read decorations: %w", err)
	}
	var out []ogimage.Decoration
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || !decorationExts[ext] {
			continue
		}
		keyword := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		src := &ogimage.CachedImage{Source: ogimage.FileImage{Path: filepath.Join(dir, e.Name())}, TTL: 24 * time.Hour}
		out = append(out, ogimage.DefaultDecoration(keyword, src))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keyword < out[j].Keyword })
	return out, nil
}
