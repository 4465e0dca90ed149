package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// WishlistState is a wishlist together with the stored version it was read at.
type WishlistState struct {
	Wishlist *domain.Wishlist
	Version  int64
}

// HydratedWishlist is a wishlist resolved against the catalog. When the
// catalog could not be read, Items is empty and Err says why.
type HydratedWishlist struct {
	WishlistState
	Items []domain.Product
	Err   error
}

// WishlistService implements the wishlist intents for each client.
type WishlistService struct {
	wishlists *store.Collection[int]
	catalog   ProductCatalog
	events    EventPublisher
	notifier  *Notifier
	locks     *keyedMutex
	logger    *slog.Logger
}

// NewWishlistService creates a wishlist service.
func NewWishlistService(
	wishlists *store.Collection[int],
	catalog ProductCatalog,
	events EventPublisher,
	notifier *Notifier,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		wishlists: wishlists,
		catalog:   catalog,
		events:    events,
		notifier:  notifier,
		locks:     newKeyedMutex(),
		logger:    logger,
	}
}

// Get returns the client's wishlisted ids.
func (s *WishlistService) Get(ctx context.Context, client string) (WishlistState, error) {
	ids, version, err := s.wishlists.Load(ctx, client)
	if err != nil {
		return WishlistState{}, fmt.Errorf("get wishlist: %w", err)
	}
	return WishlistState{Wishlist: domain.NewWishlist(ids), Version: version}, nil
}

// Add wishlists productID. An id already present is left as is.
func (s *WishlistService) Add(ctx context.Context, client string, productID int) (WishlistState, Outcome, error) {
	if productID <= 0 {
		return WishlistState{}, Outcome{}, apperrors.InvalidInput("product id must be positive")
	}

	state, changed, err := s.apply(ctx, client, func(w *domain.Wishlist) bool {
		return w.Add(productID)
	})
	if err != nil {
		return WishlistState{}, Outcome{}, err
	}
	if !changed {
		return state, Outcome{Notice: NoticeAlreadyInWishlist}, nil
	}

	s.log(ctx).InfoContext(ctx, "product added to wishlist",
		slog.Int("product_id", productID),
		slog.Int64("version", state.Version),
	)
	return state, Outcome{Changed: true, Notice: NoticeAddedToWishlist}, nil
}

// Remove drops productID. Removing an absent id changes nothing.
func (s *WishlistService) Remove(ctx context.Context, client string, productID int) (WishlistState, Outcome, error) {
	state, changed, err := s.apply(ctx, client, func(w *domain.Wishlist) bool {
		return w.Remove(productID)
	})
	if err != nil {
		return WishlistState{}, Outcome{}, err
	}

	if changed {
		s.log(ctx).InfoContext(ctx, "product removed from wishlist",
			slog.Int("product_id", productID),
			slog.Int64("version", state.Version),
		)
	}
	return state, Outcome{Changed: changed}, nil
}

// Hydrate resolves the wishlist against the full catalog, in catalog order.
// The id set is re-read once the fetch returns so an id removed meanwhile is
// not shown. A catalog failure is reported in the result, not returned.
func (s *WishlistService) Hydrate(ctx context.Context, client string) (HydratedWishlist, error) {
	before, err := s.Get(ctx, client)
	if err != nil {
		return HydratedWishlist{}, err
	}
	if before.Wishlist.Len() == 0 {
		return HydratedWishlist{WishlistState: before, Items: []domain.Product{}}, nil
	}

	products, fetchErr := s.catalog.ListProducts(ctx)

	after, err := s.Get(ctx, client)
	if err != nil {
		return HydratedWishlist{}, err
	}

	if fetchErr != nil {
		s.log(ctx).ErrorContext(ctx, "failed to hydrate wishlist",
			slog.Int("wishlist_items", after.Wishlist.Len()),
			slog.String("error", fetchErr.Error()),
		)
		return HydratedWishlist{WishlistState: after, Items: []domain.Product{}, Err: fetchErr}, nil
	}

	return HydratedWishlist{WishlistState: after, Items: after.Wishlist.Filter(products)}, nil
}

func (s *WishlistService) apply(ctx context.Context, client string, fn func(*domain.Wishlist) bool) (WishlistState, bool, error) {
	ids, version, changed, err := mutate(ctx, s.locks, s.wishlists, client, func(items []int) ([]int, bool, error) {
		w := domain.NewWishlist(items)
		changed := fn(w)
		return w.IDs(), changed, nil
	})
	if err != nil {
		return WishlistState{}, false, err
	}

	state := WishlistState{Wishlist: domain.NewWishlist(ids), Version: version}
	if !changed {
		return state, false, nil
	}

	s.notifier.Notify(Change{Client: client, Collection: store.Wishlist, Version: version})
	if err := s.events.WishlistUpdated(ctx, client, ids, version); err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("error", err.Error()),
		)
	}
	return state, true, nil
}

func (s *WishlistService) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, s.logger)
}
