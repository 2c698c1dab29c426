// Package fetcher downloads remote datasets and decodes CSV, JSON and ZIP payloads.
package fetcher

import (
	"context"
	"io"
)

// Downloader retrieves remote data.
type Downloader interface {
	// Download fetches the URL and returns the response body. Any non-2xx
	// response is an error.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
