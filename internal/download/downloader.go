// Package download fetches release artifacts (RPMs) over HTTP with bounded
// retries and atomic placement of the finished file.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Downloader fetches files over HTTP.
type Downloader struct {
	client     *http.Client
	maxRetries uint64
}

// New creates a Downloader with sensible defaults for large package
// downloads (no overall timeout, a handful of retries on transient errors).
func New() *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: 0, // No timeout for large downloads
		},
		maxRetries: 4,
	}
}

// Options configures a single fetch.
type Options struct {
	URL      string
	DestPath string
	SHA256   string // Expected checksum (optional)
}

// Fetch downloads a file to opts.DestPath. The body is streamed into a
// .part file next to the destination and renamed into place only after the
// full body (and optional checksum) is verified, so an interrupted download
// never leaves a truncated artifact at the final path. Transient network
// errors and HTTP 5xx responses are retried with capped exponential
// backoff; HTTP 4xx responses fail immediately.
func (d *Downloader) Fetch(ctx context.Context, opts Options) error {
	destDir := filepath.Dir(opts.DestPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	operation := func() error {
		return d.fetchOnce(ctx, opts)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second

	return backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, d.maxRetries), ctx))
}

func (d *Downloader) fetchOnce(ctx context.Context, opts Options) error {
	tmpPath := opts.DestPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create temp file: %w", err))
	}

	renamed := false
	defer func() {
		out.Close()
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s failed: %w", opts.URL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// proceed
	case resp.StatusCode >= 500:
		return fmt.Errorf("download %s failed: HTTP %d", opts.URL, resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("download %s failed: HTTP %d", opts.URL, resp.StatusCode))
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("download %s failed: %w", opts.URL, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if opts.SHA256 != "" {
		sum, err := fileSHA256(tmpPath)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to calculate checksum: %w", err))
		}
		if sum != opts.SHA256 {
			return backoff.Permanent(fmt.Errorf("checksum mismatch for %s: expected %s, got %s",
				opts.DestPath, opts.SHA256, sum))
		}
	}

	if err := os.Rename(tmpPath, opts.DestPath); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to move file to %s: %w", opts.DestPath, err))
	}
	renamed = true

	return nil
}

func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
