// Package fs provides file-based mirroring of crawled pages.
package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webcrawl"
)

// URLToPath converts a page URL to a relative file path under its host.
// The URL's path and query are hashed so that every distinct page maps to
// its own file regardless of the characters it contains.
// Example: https://example.com/docs/api → example.com/3f1c...e2.html
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "invalid URL: %v", err)
	}
	if u.Host == "" {
		return "", webcrawl.Errorf(webcrawl.EINVALID, "URL has no host: %s", rawURL)
	}

	host := strings.ToLower(strings.ReplaceAll(u.Host, ":", "_"))

	key := u.EscapedPath()
	if key == "" {
		key = "/"
	}
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}

	name := strconv.FormatUint(xxhash.Sum64String(key), 16) + ".html"
	return filepath.Join(host, name), nil
}

// Ensure MirrorFetcher implements webcrawl.Fetcher at compile time.
var _ webcrawl.Fetcher = (*MirrorFetcher)(nil)

// MirrorFetcher wraps a Fetcher and writes every fetched page below a base
// directory. Mirrored pages are never read back.
type MirrorFetcher struct {
	next    webcrawl.Fetcher
	baseDir string
}

// NewMirrorFetcher creates a MirrorFetcher that writes to baseDir.
func NewMirrorFetcher(next webcrawl.Fetcher, baseDir string) *MirrorFetcher {
	return &MirrorFetcher{next: next, baseDir: baseDir}
}

// Fetch delegates to the wrapped fetcher and stores the result.
// A page that cannot be written counts as a failed fetch.
func (f *MirrorFetcher) Fetch(ctx context.Context, url string) (string, error) {
	html, err := f.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if err := f.save(url, html); err != nil {
		return "", err
	}
	return html, nil
}

// Close closes the wrapped fetcher.
func (f *MirrorFetcher) Close() error {
	return f.next.Close()
}

func (f *MirrorFetcher) save(rawURL, html string) error {
	relPath, err := URLToPath(rawURL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(f.baseDir, relPath)

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	// Write to a temporary file and rename so readers never see a partial page.
	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(html), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, fullPath)
}
