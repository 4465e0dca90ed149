package repository

import (
	"context"
	"strings"
)

// Blob is a persisted value together with its version. A key that was never
// written reads as a Blob with nil Data and Version 0.
type Blob struct {
	Data    []byte
	Version int64
}

// BlobRepository stores opaque versioned blobs by key.
type BlobRepository interface {
	// Get returns the blob stored at key.
	Get(ctx context.Context, key string) (Blob, error)

	// CompareAndSwap replaces the blob at key with data if its current version
	// equals expected, and returns the new version. A mismatch returns an
	// error wrapping apperrors.ErrConflict and leaves the blob untouched.
	CompareAndSwap(ctx context.Context, key string, data []byte, expected int64) (int64, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// Key joins the parts of a blob key: <prefix>:<client>:<collection>.
func Key(prefix, client, collection string) string {
	return strings.Join([]string{prefix, client, collection}, ":")
}
