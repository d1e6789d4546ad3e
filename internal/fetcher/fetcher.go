// Package fetcher opens and decodes the tabular sources fed to the linker:
// local files or http(s) URLs, CSV text in one of several legacy encodings,
// and XLSX workbooks.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote sources.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
