package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/httputil"
	spriteio "github.com/matzehuels/spritestyle/pkg/io"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// downloadTTL is how long downloaded references are reused.
const downloadTTL = 24 * time.Hour

// loadReferences decodes every reference image, failing on the first
// unreadable one. http and https references are downloaded, through the
// download cache unless noCache is set.
func loadReferences(ctx context.Context, paths []string, noCache bool) ([]*pixel.Buffer, error) {
	var fetcher *httputil.Fetcher
	refs := make([]*pixel.Buffer, 0, len(paths))
	for _, p := range paths {
		if !httputil.IsURL(p) {
			buf, err := spriteio.LoadImage(p)
			if err != nil {
				return nil, err
			}
			refs = append(refs, buf)
			continue
		}

		if fetcher == nil {
			fetcher = newFetcher(noCache)
		}
		body, err := fetcher.Fetch(ctx, p)
		if err != nil {
			return nil, err
		}
		buf, _, err := spriteio.DecodeImage(bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "load %s", p)
		}
		refs = append(refs, buf)
	}
	return refs, nil
}

// newFetcher returns a downloader that caches under the cache directory.
// Caching is skipped when the directory is unavailable.
func newFetcher(noCache bool) *httputil.Fetcher {
	if noCache {
		return httputil.NewFetcher(nil)
	}
	dir, err := cacheDir()
	if err != nil {
		return httputil.NewFetcher(nil)
	}
	c, err := httputil.NewCache(filepath.Join(dir, "downloads"), downloadTTL)
	if err != nil {
		return httputil.NewFetcher(nil)
	}
	return httputil.NewFetcher(c)
}

// loadStyle reads a style config from a .json or .toml file, or from the
// local store when arg is a style ID returned by "analyze --save". An empty
// arg means the default style.
func loadStyle(ctx context.Context, arg string) (*style.Config, error) {
	if arg == "" {
		return style.Default(), nil
	}
	if _, err := os.Stat(arg); err == nil || errors.ValidateStyleID(arg) != nil {
		return style.Load(arg)
	}

	store, err := newStore()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	return store.GetStyle(ctx, arg)
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
	}
	return nil
}

// variantPath returns the path of variant i next to base, for example
// "hero.png" → "hero_1.png".
func variantPath(base string, i int) string {
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_%d%s", base[:len(base)-len(ext)], i+1, ext)
}
