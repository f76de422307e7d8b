package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDownloader(maxRetries uint64) *Downloader {
	return &Downloader{
		client:     &http.Client{},
		maxRetries: maxRetries,
	}
}

func TestFetchSuccess(t *testing.T) {
	body := []byte("rpm payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "pkg", "client.rpm")
	err := testDownloader(0).Fetch(context.Background(), Options{
		URL:      server.URL,
		DestPath: dest,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	// No .part leftover after a successful fetch.
	_, err = os.Stat(dest + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestFetchRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "client.rpm")
	err := testDownloader(2).Fetch(context.Background(), Options{
		URL:      server.URL,
		DestPath: dest,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "client.rpm")
	err := testDownloader(3).Fetch(context.Background(), Options{
		URL:      server.URL,
		DestPath: dest,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Equal(t, int32(1), calls.Load())

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchVerifiesChecksum(t *testing.T) {
	body := []byte("rpm payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	sum := sha256.Sum256(body)
	dest := filepath.Join(t.TempDir(), "client.rpm")
	err := testDownloader(0).Fetch(context.Background(), Options{
		URL:      server.URL,
		DestPath: dest,
		SHA256:   hex.EncodeToString(sum[:]),
	})
	require.NoError(t, err)
}

func TestFetchRejectsChecksumMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tampered payload"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "client.rpm")
	err := testDownloader(3).Fetch(context.Background(), Options{
		URL:      server.URL,
		DestPath: dest,
		SHA256:   "deadbeef",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")

	// Nothing was placed at the final path.
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "client.rpm")
	err := testDownloader(10).Fetch(ctx, Options{
		URL:      server.URL,
		DestPath: dest,
	})
	require.Error(t, err)
}
