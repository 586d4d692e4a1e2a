package buildenv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherFetch(t *testing.T) {
	payload := []byte("source tarball bytes")
	sum := sha256.Sum256(payload)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	fetcher := NewHTTPFetcher()
	err := fetcher.Fetch(context.Background(), srv.URL+"/demo-1.0.tar.gz", hex.EncodeToString(sum[:]), dir)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "demo-1.0.tar.gz"))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestHTTPFetcherChecksumMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tampered content"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	fetcher := NewHTTPFetcher()
	err := fetcher.Fetch(context.Background(), srv.URL+"/demo-1.0.tar.gz", "00", dir)
	require.Error(t, err)

	var mismatch *ChecksumMismatchError
	require.ErrorAs(t, err, &mismatch)

	// The tampered download must not be left behind under its real name.
	_, statErr := os.Stat(filepath.Join(dir, "demo-1.0.tar.gz"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestHTTPFetcherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher()
	err := fetcher.Fetch(context.Background(), srv.URL+"/missing.tar.gz", "00", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSourceFileName(t *testing.T) {
	assert.Equal(t, "demo-1.0.tar.gz", sourceFileName("https://example.com/pkgs/demo-1.0.tar.gz"))
	assert.Equal(t, "demo.zip", sourceFileName("https://example.com/demo.zip?token=abc"))
	assert.Equal(t, "source", sourceFileName("https://example.com/"))
}
