package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartState is a cart together with the stored version it was read at.
type CartState struct {
	Cart    *domain.Cart
	Version int64
}

// CartService implements the cart intents for each client.
type CartService struct {
	carts       *store.Collection[domain.CartEntry]
	catalog     ProductCatalog
	events      EventPublisher
	notifier    *Notifier
	locks       *keyedMutex
	maxQuantity int
	logger      *slog.Logger
}

// NewCartService creates a cart service. maxQuantity bounds SetQuantity; a
// non-positive value means domain.DefaultMaxQuantity.
func NewCartService(
	carts *store.Collection[domain.CartEntry],
	catalog ProductCatalog,
	events EventPublisher,
	notifier *Notifier,
	maxQuantity int,
	logger *slog.Logger,
) *CartService {
	if maxQuantity <= 0 {
		maxQuantity = domain.DefaultMaxQuantity
	}
	return &CartService{
		carts:       carts,
		catalog:     catalog,
		events:      events,
		notifier:    notifier,
		locks:       newKeyedMutex(),
		maxQuantity: maxQuantity,
		logger:      logger,
	}
}

// MaxQuantity is the largest quantity SetQuantity accepts.
func (s *CartService) MaxQuantity() int {
	return s.maxQuantity
}

// Get returns the client's cart.
func (s *CartService) Get(ctx context.Context, client string) (CartState, error) {
	entries, version, err := s.carts.Load(ctx, client)
	if err != nil {
		return CartState{}, fmt.Errorf("get cart: %w", err)
	}
	return CartState{Cart: domain.NewCart(entries), Version: version}, nil
}

// AddItem snapshots the catalog product and appends it with quantity 1. A
// product already in the cart is left as is.
func (s *CartService) AddItem(ctx context.Context, client string, productID int) (CartState, Outcome, error) {
	if productID <= 0 {
		return CartState{}, Outcome{}, apperrors.InvalidInput("product id must be positive")
	}

	current, err := s.Get(ctx, client)
	if err != nil {
		return CartState{}, Outcome{}, err
	}
	if current.Cart.Find(productID) >= 0 {
		return current, Outcome{Notice: NoticeAlreadyInCart}, nil
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return CartState{}, Outcome{}, fmt.Errorf("fetch product %d: %w", productID, err)
	}

	state, changed, err := s.apply(ctx, client, func(c *domain.Cart) (bool, error) {
		return c.Add(product), nil
	})
	if err != nil {
		return CartState{}, Outcome{}, err
	}
	if !changed {
		return state, Outcome{Notice: NoticeAlreadyInCart}, nil
	}

	s.log(ctx).InfoContext(ctx, "item added to cart",
		slog.Int("product_id", productID),
		slog.Int64("version", state.Version),
	)
	return state, Outcome{Changed: true, Notice: NoticeAddedToCart}, nil
}

// RemoveItem drops productID. Removing an absent product changes nothing.
func (s *CartService) RemoveItem(ctx context.Context, client string, productID int) (CartState, Outcome, error) {
	state, changed, err := s.apply(ctx, client, func(c *domain.Cart) (bool, error) {
		return c.Remove(productID), nil
	})
	if err != nil {
		return CartState{}, Outcome{}, err
	}

	if changed {
		s.log(ctx).InfoContext(ctx, "item removed from cart",
			slog.Int("product_id", productID),
			slog.Int64("version", state.Version),
		)
	}
	return state, Outcome{Changed: changed}, nil
}

// SetQuantity replaces the quantity of productID. quantity must be within
// [1, MaxQuantity]; an absent product changes nothing.
func (s *CartService) SetQuantity(ctx context.Context, client string, productID, quantity int) (CartState, Outcome, error) {
	if err := validator.Var("quantity", quantity, fmt.Sprintf("gte=1,lte=%d", s.maxQuantity)); err != nil {
		return CartState{}, Outcome{}, apperrors.InvalidInput(err.Error())
	}

	state, changed, err := s.apply(ctx, client, func(c *domain.Cart) (bool, error) {
		i := c.Find(productID)
		if i < 0 || c.Entries[i].Quantity == quantity {
			return false, nil
		}
		return c.SetQuantity(productID, quantity), nil
	})
	if err != nil {
		return CartState{}, Outcome{}, err
	}

	if changed {
		s.log(ctx).InfoContext(ctx, "cart item quantity updated",
			slog.Int("product_id", productID),
			slog.Int("quantity", quantity),
			slog.Int64("version", state.Version),
		)
	}
	return state, Outcome{Changed: changed}, nil
}

// Clear removes every entry from the cart.
func (s *CartService) Clear(ctx context.Context, client string) (CartState, Outcome, error) {
	entries, version, changed, err := mutate(ctx, s.locks, s.carts, client, func(items []domain.CartEntry) ([]domain.CartEntry, bool, error) {
		return []domain.CartEntry{}, len(items) > 0, nil
	})
	if err != nil {
		return CartState{}, Outcome{}, err
	}
	state := CartState{Cart: domain.NewCart(entries), Version: version}
	if !changed {
		return state, Outcome{}, nil
	}

	s.notifier.Notify(Change{Client: client, Collection: store.Cart, Version: version})
	if err := s.events.CartCleared(ctx, client, version); err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("error", err.Error()),
		)
	}

	s.log(ctx).InfoContext(ctx, "cart cleared", slog.Int64("version", version))
	return state, Outcome{Changed: true}, nil
}

// apply runs fn against the freshly loaded cart and persists the result.
// Notification and the cart.updated event follow a successful write.
func (s *CartService) apply(ctx context.Context, client string, fn func(*domain.Cart) (bool, error)) (CartState, bool, error) {
	entries, version, changed, err := mutate(ctx, s.locks, s.carts, client, func(items []domain.CartEntry) ([]domain.CartEntry, bool, error) {
		cart := domain.NewCart(items)
		changed, err := fn(cart)
		if err != nil {
			return nil, false, err
		}
		return cart.Entries, changed, nil
	})
	if err != nil {
		return CartState{}, false, err
	}

	state := CartState{Cart: domain.NewCart(entries), Version: version}
	if !changed {
		return state, false, nil
	}

	s.notifier.Notify(Change{Client: client, Collection: store.Cart, Version: version})
	if err := s.events.CartUpdated(ctx, client, state.Cart, version); err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("error", err.Error()),
		)
	}
	return state, true, nil
}

func (s *CartService) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, s.logger)
}
