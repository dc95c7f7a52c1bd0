package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// maxDownloadBytes caps the size of a downloaded word list.
const maxDownloadBytes = 64 << 20

// Doer sends HTTP requests, *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var (
	ErrorURLNotFound = errors.New("URL not found")
	ErrorTooLarge    = errors.New("download exceeds size limit")
)

// Download fetches url into path. The file is written to a temporary
// sibling first and renamed on success, so a failed download never
// leaves a truncated list behind.
func Download(ctx context.Context, client Doer, url, path string) (n int64, retErr error) {
	if url == "" || path == "" {
		return 0, errors.New("url and path are required")
	}
	if client == nil {
		client = GetHTTPClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating HTTP Get request: %w", err)
	}
	req.Header.Set("User-Agent", clientAgent)

	resp, err := client.Do(req) //nolint:gosec // URL comes from the operator
	if err != nil {
		return 0, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, ErrorURLNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	n, err = io.Copy(tmp, io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return 0, fmt.Errorf("saving downloaded content: %w", err)
	}
	if n > maxDownloadBytes {
		return 0, ErrorTooLarge
	}

	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("moving download into place: %w", err)
	}

	return n, nil
}
