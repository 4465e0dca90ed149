package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// BlobRepository is an in-process repository.BlobRepository. State is lost
// when the process exits.
type BlobRepository struct {
	mu    sync.RWMutex
	blobs map[string]repository.Blob
}

// NewBlobRepository creates an empty in-memory repository.
func NewBlobRepository() *BlobRepository {
	return &BlobRepository{blobs: make(map[string]repository.Blob)}
}

// Get returns a copy of the blob at key.
func (r *BlobRepository) Get(_ context.Context, key string) (repository.Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.blobs[key]
	if !ok {
		return repository.Blob{}, nil
	}
	return repository.Blob{Data: append([]byte(nil), b.Data...), Version: b.Version}, nil
}

// CompareAndSwap writes data if the stored version equals expected.
func (r *BlobRepository) CompareAndSwap(_ context.Context, key string, data []byte, expected int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.blobs[key].Version
	if current != expected {
		return 0, apperrors.Conflict(fmt.Sprintf("%s changed: version %d, expected %d", key, current, expected))
	}

	next := expected + 1
	r.blobs[key] = repository.Blob{Data: append([]byte(nil), data...), Version: next}
	return next, nil
}

// Ping always succeeds.
func (r *BlobRepository) Ping(context.Context) error {
	return nil
}
