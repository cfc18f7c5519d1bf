package miqa

import (
	"context"
	"io"
)

// ObjectStore mirrors raw data files into S3-compatible object storage.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Upload stores body under key and returns the key on success.
	// size is the content length in bytes; -1 if unknown.
	Upload(ctx context.Context, key string, body io.Reader, size int64) (string, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}
