package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// Collection names.
const (
	Cart     = "cart"
	Wishlist = "wishlist"
)

// Collection is a per-client JSON array of T kept in a BlobRepository.
type Collection[T any] struct {
	repo   repository.BlobRepository
	prefix string
	name   string
	logger *slog.Logger
}

// NewCollection creates the named collection under prefix.
func NewCollection[T any](repo repository.BlobRepository, prefix, name string, logger *slog.Logger) *Collection[T] {
	return &Collection[T]{
		repo:   repo,
		prefix: prefix,
		name:   name,
		logger: logger,
	}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Load returns the client's items and the version they were read at. A
// missing, blank or unparseable blob reads as an empty collection; only a
// backend failure is returned as an error.
func (c *Collection[T]) Load(ctx context.Context, client string) ([]T, int64, error) {
	key := repository.Key(c.prefix, client, c.name)

	blob, err := c.repo.Get(ctx, key)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", c.name, err)
	}

	items := []T{}
	if len(bytes.TrimSpace(blob.Data)) == 0 {
		return items, blob.Version, nil
	}

	if err := json.Unmarshal(blob.Data, &items); err != nil {
		failOpenTotal.WithLabelValues(c.name).Inc()
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "discarding unreadable collection",
			slog.String("collection", c.name),
			slog.Int64("version", blob.Version),
			slog.String("error", err.Error()),
		)
		return []T{}, blob.Version, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, blob.Version, nil
}

// Save replaces the client's items if the collection is still at expected
// and returns the new version. A concurrent change yields an error wrapping
// apperrors.ErrConflict.
func (c *Collection[T]) Save(ctx context.Context, client string, items []T, expected int64) (int64, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("marshal %s: %w", c.name, err)
	}

	key := repository.Key(c.prefix, client, c.name)
	version, err := c.repo.CompareAndSwap(ctx, key, data, expected)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			conflictsTotal.WithLabelValues(c.name).Inc()
			return 0, err
		}
		return 0, fmt.Errorf("save %s: %w", c.name, err)
	}

	savesTotal.WithLabelValues(c.name).Inc()
	return version, nil
}

// Clear empties the client's collection.
func (c *Collection[T]) Clear(ctx context.Context, client string, expected int64) (int64, error) {
	return c.Save(ctx, client, nil, expected)
}
