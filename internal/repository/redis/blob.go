package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const versionSuffix = ":version"

// BlobRepository implements repository.BlobRepository using Redis. Each blob
// has a sibling <key>:version counter and writes are a WATCH/MULTI
// compare-and-swap over both keys. A counter that is not an integer reads as
// version 0, so the next write replaces it.
type BlobRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewBlobRepository creates a Redis-backed blob repository. A zero ttl keeps
// blobs forever.
func NewBlobRepository(client *redis.Client, ttl time.Duration, logger *slog.Logger) *BlobRepository {
	return &BlobRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get reads the blob and its version in one round trip.
func (r *BlobRepository) Get(ctx context.Context, key string) (repository.Blob, error) {
	vals, err := r.client.MGet(ctx, key, key+versionSuffix).Result()
	if err != nil {
		return repository.Blob{}, fmt.Errorf("redis mget %s: %w", key, err)
	}

	var blob repository.Blob
	if s, ok := vals[0].(string); ok {
		blob.Data = []byte(s)
	}
	if s, ok := vals[1].(string); ok {
		blob.Version = r.parseVersion(ctx, key, s)
	}
	return blob, nil
}

func (r *BlobRepository) parseVersion(ctx context.Context, key, raw string) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.logger.WarnContext(ctx, "unreadable collection version, treating as 0",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return v
}

// CompareAndSwap writes data if the stored version equals expected.
func (r *BlobRepository) CompareAndSwap(ctx context.Context, key string, data []byte, expected int64) (int64, error) {
	versionKey := key + versionSuffix
	next := expected + 1

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, versionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis get version: %w", err)
		}
		var current int64
		if err == nil {
			current = r.parseVersion(ctx, key, raw)
		}
		if current != expected {
			return apperrors.Conflict(fmt.Sprintf("%s changed: version %d, expected %d", key, current, expected))
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			pipe.Set(ctx, versionKey, next, r.ttl)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, versionKey)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return 0, apperrors.Conflict(fmt.Sprintf("%s changed during write", key))
	case errors.Is(err, apperrors.ErrConflict):
		return 0, err
	case err != nil:
		return 0, fmt.Errorf("redis cas %s: %w", key, err)
	}
	return next, nil
}

// Ping checks Redis connectivity.
func (r *BlobRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
