// Package fetch downloads raw data files to local disk, streaming them
// through a checksum and reporting progress along the way.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/miqalab/miqa/internal/checksum"
	"github.com/miqalab/miqa/internal/retry"
	"github.com/miqalab/miqa/pkg/miqa"
)

// Progress is called as bytes arrive. total is -1 when the server does not
// send a Content-Length.
type Progress func(written, total int64)

// Result describes a completed download.
type Result struct {
	// Path is the final location of the file on disk.
	Path string

	// Checksum is the hex SHA-256 of the file contents.
	Checksum string

	// Size is the number of bytes written.
	Size int64
}

// Downloader fetches files over HTTP with retry on transient failures.
// A failed attempt leaves no partial file behind: data lands in a temp file
// that is renamed into place only on success.
type Downloader struct {
	httpClient *http.Client
	executor   *retry.Executor
	logger     miqa.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient replaces the default HTTP client. The default carries no
// timeout; downloads are bounded by the caller's context.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Downloader) { d.httpClient = hc }
}

// NewDownloader creates a Downloader. Panics if logger is nil.
func NewDownloader(logger miqa.Logger, opts ...Option) *Downloader {
	if logger == nil {
		panic("fetch.NewDownloader: logger is nil")
	}

	classifier := retry.NewHTTPErrorClassifier()
	strategy := retry.NewExponentialBackoff(miqa.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(miqa.DefaultRetryInitialDelay),
		retry.WithMaxDelay(miqa.DefaultRetryMaxDelay),
	)

	d := &Downloader{
		httpClient: &http.Client{},
		executor:   retry.NewExecutor(classifier, strategy),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches rawURL into destDir, named after the URL's last path
// segment. progress may be nil.
func (d *Downloader) Download(ctx context.Context, rawURL, destDir string, progress Progress) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL %q: %w", miqa.ErrFetchFailed, rawURL, err)
	}
	filename := path.Base(parsed.Path)
	if filename == "." || filename == "/" {
		return nil, fmt.Errorf("cannot derive filename from %q: %w", rawURL, miqa.ErrFetchFailed)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	var result *Result
	err = d.executor.Execute(ctx, func(ctx context.Context) error {
		r, err := d.downloadOnce(ctx, rawURL, destDir, filename, progress)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", miqa.ErrFetchFailed, rawURL, err)
	}

	return result, nil
}

func (d *Downloader) downloadOnce(ctx context.Context, rawURL, destDir, filename string, progress Progress) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, &retry.StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(destDir, filename+".part-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
	}()

	hasher := checksum.SHA256{}.Tee()
	counter := &countingWriter{progress: progress, total: resp.ContentLength}

	written, err := io.Copy(io.MultiWriter(tmp, hasher, counter), resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to stream %s: %w", rawURL, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush %s: %w", tmp.Name(), err)
	}

	finalPath := filepath.Join(destDir, filename)
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return nil, fmt.Errorf("failed to move download into place: %w", err)
	}

	d.logger.Verbose("downloaded %s (%d bytes)", filename, written)

	return &Result{
		Path:     finalPath,
		Checksum: checksum.SHA256{}.Encode(hasher),
		Size:     written,
	}, nil
}

type countingWriter struct {
	progress Progress
	written  int64
	total    int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.written += int64(len(p))
	if c.progress != nil {
		c.progress(c.written, c.total)
	}
	return len(p), nil
}
