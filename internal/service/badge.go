package service

import (
	"context"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
)

// Badge holds the navigation counters.
type Badge struct {
	CartItems     int `json:"cart_items"`
	CartEntries   int `json:"cart_entries"`
	WishlistItems int `json:"wishlist_items"`
}

// BadgeService computes navigation counters from stored collections.
type BadgeService struct {
	carts     *store.Collection[domain.CartEntry]
	wishlists *store.Collection[int]
}

// NewBadgeService creates a badge service.
func NewBadgeService(carts *store.Collection[domain.CartEntry], wishlists *store.Collection[int]) *BadgeService {
	return &BadgeService{carts: carts, wishlists: wishlists}
}

// Get counts the client's cart units, distinct cart products and wishlist ids.
func (s *BadgeService) Get(ctx context.Context, client string) (Badge, error) {
	entries, _, err := s.carts.Load(ctx, client)
	if err != nil {
		return Badge{}, fmt.Errorf("badge cart: %w", err)
	}
	ids, _, err := s.wishlists.Load(ctx, client)
	if err != nil {
		return Badge{}, fmt.Errorf("badge wishlist: %w", err)
	}

	cart := domain.NewCart(entries)
	return Badge{
		CartItems:     cart.ItemCount(),
		CartEntries:   cart.Len(),
		WishlistItems: domain.NewWishlist(ids).Len(),
	}, nil
}
