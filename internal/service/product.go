package service

import (
	"context"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
)

// DefaultPageSize is the product grid page size.
const DefaultPageSize = 8

// ProductService serves the read-only catalog views.
type ProductService struct {
	catalog ProductCatalog
}

// NewProductService creates a product service.
func NewProductService(catalog ProductCatalog) *ProductService {
	return &ProductService{catalog: catalog}
}

// List returns one page of the product grid.
func (s *ProductService) List(ctx context.Context, params pagination.Params) (pagination.Result[domain.Product], error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return pagination.Result[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.Paginate(products, params), nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id int) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, apperrors.InvalidInput("product id must be positive")
	}
	return s.catalog.GetProduct(ctx, id)
}

// Categories lists the catalog categories.
func (s *ProductService) Categories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// InCategory returns one page of the products in the category named by
// value, which may be the category name or its slug.
func (s *ProductService) InCategory(ctx context.Context, value string, params pagination.Params) (domain.Category, pagination.Result[domain.Product], error) {
	var none pagination.Result[domain.Product]

	cats, err := s.Categories(ctx)
	if err != nil {
		return domain.Category{}, none, err
	}

	for _, c := range cats {
		if !slug.Matches(c.Name, value) {
			continue
		}
		products, err := s.catalog.ProductsInCategory(ctx, c.Name)
		if err != nil {
			return domain.Category{}, none, fmt.Errorf("list category %q: %w", c.Name, err)
		}
		return c, pagination.Paginate(products, params), nil
	}

	return domain.Category{}, none, apperrors.NotFound("category", value)
}
