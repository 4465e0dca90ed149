package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// --- Mock Catalog ---

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalog) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(context.Context, int) domain.Product); ok {
		return fn(ctx, id), args.Error(1)
	}
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCatalog) ProductsInCategory(ctx context.Context, name string) ([]domain.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

// --- Recording Publisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) record(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, name)
	return p.err
}

func (p *recordingPublisher) CartUpdated(context.Context, string, *domain.Cart, int64) error {
	return p.record("cart.updated")
}

func (p *recordingPublisher) CartCleared(context.Context, string, int64) error {
	return p.record("cart.cleared")
}

func (p *recordingPublisher) WishlistUpdated(context.Context, string, []int, int64) error {
	return p.record("wishlist.updated")
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// --- Conflicting Repository ---

// conflictingRepo fails the first n compare-and-swaps with a conflict.
type conflictingRepo struct {
	repository.BlobRepository
	mu sync.Mutex
	n  int
}

func (r *conflictingRepo) CompareAndSwap(ctx context.Context, key string, data []byte, expected int64) (int64, error) {
	r.mu.Lock()
	if r.n > 0 {
		r.n--
		r.mu.Unlock()
		return 0, apperrors.Conflict("simulated concurrent write")
	}
	r.mu.Unlock()
	return r.BlobRepository.CompareAndSwap(ctx, key, data, expected)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	repo      repository.BlobRepository
	catalog   *mockCatalog
	events    *recordingPublisher
	notifier  *Notifier
	carts     *CartService
	wishlists *WishlistService
	badges    *BadgeService
}

func newFixture() *fixture {
	return newFixtureWithRepo(memory.NewBlobRepository())
}

func newFixtureWithRepo(repo repository.BlobRepository) *fixture {
	logger := newTestLogger()
	cat := new(mockCatalog)
	events := &recordingPublisher{}
	notifier := NewNotifier(8)

	carts := store.NewCollection[domain.CartEntry](repo, "sf", store.Cart, logger)
	wishlists := store.NewCollection[int](repo, "sf", store.Wishlist, logger)

	return &fixture{
		repo:      repo,
		catalog:   cat,
		events:    events,
		notifier:  notifier,
		carts:     NewCartService(carts, cat, events, notifier, 0, logger),
		wishlists: NewWishlistService(wishlists, cat, events, notifier, logger),
		badges:    NewBadgeService(carts, wishlists),
	}
}

func product(id int, price, discount float64) domain.Product {
	return domain.Product{
		ID:                 id,
		Title:              "Product",
		Price:              price,
		Category:           "electronics",
		DiscountPercentage: discount,
	}
}
