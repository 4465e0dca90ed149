package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// MaxCASRetries is how many times a mutation is re-applied to a fresh read
// after losing a compare-and-swap race.
const MaxCASRetries = 3

// Notices shown after a cart or wishlist intent.
const (
	NoticeAddedToCart       = "added to cart"
	NoticeAlreadyInCart     = "already in cart"
	NoticeAddedToWishlist   = "added to wishlist"
	NoticeAlreadyInWishlist = "already in wishlist"
)

// ProductCatalog is the read-only product source.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ProductsInCategory(ctx context.Context, name string) ([]domain.Product, error)
}

// EventPublisher emits domain events after a collection changes. Failures
// are logged by the caller and never fail the mutation.
type EventPublisher interface {
	CartUpdated(ctx context.Context, client string, cart *domain.Cart, version int64) error
	CartCleared(ctx context.Context, client string, version int64) error
	WishlistUpdated(ctx context.Context, client string, ids []int, version int64) error
}

// Outcome describes what an intent did.
type Outcome struct {
	Changed bool   `json:"changed"`
	Notice  string `json:"notice,omitempty"`
}

// mutateFunc transforms loaded items. It reports whether anything changed;
// unchanged items are not written.
type mutateFunc[T any] func(items []T) ([]T, bool, error)

// mutate applies fn under the per-client lock and saves the result with a
// compare-and-swap, retrying on conflict.
func mutate[T any](ctx context.Context, locks *keyedMutex, coll *store.Collection[T], client string, fn mutateFunc[T]) ([]T, int64, bool, error) {
	unlock := locks.Lock(client + ":" + coll.Name())
	defer unlock()

	for attempt := 0; attempt <= MaxCASRetries; attempt++ {
		items, version, err := coll.Load(ctx, client)
		if err != nil {
			return nil, 0, false, err
		}

		next, changed, err := fn(items)
		if err != nil {
			return nil, 0, false, err
		}
		if !changed {
			return next, version, false, nil
		}

		newVersion, err := coll.Save(ctx, client, next, version)
		if err == nil {
			return next, newVersion, true, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, 0, false, err
		}
		casRetriesTotal.WithLabelValues(coll.Name()).Inc()
	}

	return nil, 0, false, apperrors.Conflict(fmt.Sprintf("%s was modified concurrently, please retry", coll.Name()))
}
