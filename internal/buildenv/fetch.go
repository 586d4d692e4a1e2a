package buildenv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vk/packforge/internal/ctxlog"
)

// HTTPFetcher downloads sources over HTTP(S) and verifies their sha256
// digest before releasing them to the build.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher using the default HTTP client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient}
}

// Fetch downloads url into destDir, named after the last path segment. The
// file is written under a temporary name and only renamed into place once
// the digest matches, so an interrupted or corrupt download never looks
// like a valid source.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, wantSHA256, destDir string) error {
	logger := ctxlog.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(destDir, sourceFileName(url))
	tmp, err := os.CreateTemp(destDir, ".fetch-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(actual, wantSHA256) {
		return &ChecksumMismatchError{URL: url, Expected: strings.ToLower(wantSHA256), Actual: actual}
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	logger.Debug("fetched source", "url", url, "dest", dest)
	return nil
}

// sourceFileName derives a local file name from the URL path.
func sourceFileName(url string) string {
	trimmed := strings.SplitN(url, "?", 2)[0]
	name := path.Base(trimmed)
	if name == "" || name == "." || name == "/" {
		return "source"
	}
	return name
}
