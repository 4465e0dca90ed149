package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/slug"
)

const (
	tracerName = "github.com/utafrali/storefront/internal/catalog"
	upstream   = "catalog"

	// maxBody bounds a catalog response body.
	maxBody = 8 << 20
)

// Messages shown to the user for malformed catalog responses.
const (
	MsgEmptyResponse = "received an empty response"
	MsgParseError    = "could not parse product data"
	MsgInvalidData   = "product data is invalid"
	MsgUnreachable   = "the catalog is unreachable"
)

// CircuitOpenFallback answers catalog calls while the breaker is open.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("the catalog is temporarily unavailable, please retry shortly")
}

// HTTPDoer executes HTTP requests. httpclient.Client and
// httpclient.CircuitBreakerClient both satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client reads products from the remote catalog API and normalizes them.
type Client struct {
	http    HTTPDoer
	baseURL string
	adapter *Adapter
	logger  *slog.Logger
}

// NewClient creates a catalog client rooted at baseURL.
func NewClient(doer HTTPDoer, baseURL string, adapter *Adapter, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		adapter: adapter,
		logger:  logger,
	}
}

// ListProducts fetches the whole catalog in response order. Records without
// an id are skipped and logged.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var raw []rawProduct
	if err := c.getJSON(ctx, "list_products", "/products", "", "", &raw); err != nil {
		return nil, err
	}
	return c.normalizeAll(ctx, raw), nil
}

// GetProduct fetches one product. A 404 yields a NOT_FOUND AppError.
func (c *Client) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	idStr := strconv.Itoa(id)

	var raw rawProduct
	if err := c.getJSON(ctx, "get_product", "/products/"+idStr, "product", idStr, &raw); err != nil {
		return domain.Product{}, err
	}

	p, err := c.adapter.Normalize(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog returned invalid product",
			slog.Int("product_id", id),
			slog.String("error", err.Error()),
		)
		return domain.Product{}, apperrors.InvalidPayload(MsgInvalidData, err)
	}
	if p.ID != id {
		c.logger.WarnContext(ctx, "catalog returned a different product",
			slog.Int("product_id", id),
			slog.Int("returned_id", p.ID),
		)
		return domain.Product{}, apperrors.InvalidPayload(MsgInvalidData, fmt.Errorf("requested product %d, got %d", id, p.ID))
	}
	return p, nil
}

// ListCategories fetches the category names.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var names []string
	if err := c.getJSON(ctx, "list_categories", "/products/categories", "", "", &names); err != nil {
		return nil, err
	}

	out := make([]domain.Category, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Category{Name: n, Slug: slug.Generate(n)})
	}
	return out, nil
}

// ProductsInCategory fetches the products of the named category.
func (c *Client) ProductsInCategory(ctx context.Context, name string) ([]domain.Product, error) {
	var raw []rawProduct
	path := "/products/category/" + url.PathEscape(name)
	if err := c.getJSON(ctx, "products_in_category", path, "category", name, &raw); err != nil {
		return nil, err
	}
	return c.normalizeAll(ctx, raw), nil
}

// Ping fetches the category list as a cheap reachability probe.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListCategories(ctx)
	return err
}

func (c *Client) normalizeAll(ctx context.Context, raw []rawProduct) []domain.Product {
	out := make([]domain.Product, 0, len(raw))
	for i, r := range raw {
		p, err := c.adapter.Normalize(r)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping invalid catalog record",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, p)
	}
	return out
}

// getJSON performs GET baseURL+path and decodes the body into dst. resource
// and id name the looked-up entity so a 404 maps to NOT_FOUND; list calls
// leave them empty.
func (c *Client) getJSON(ctx context.Context, op, path, resource, id string, dst any) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("catalog.path", path)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("build catalog request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("catalog %s: %w", op, ctxErr)
		}
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			span.SetAttributes(attribute.Int("http.status_code", statusErr.StatusCode))
			c.logger.ErrorContext(ctx, "catalog returned error status",
				slog.String("path", path),
				slog.Int("status", statusErr.StatusCode),
			)
			return statusErr.AppError(resource, id)
		}
		c.logger.ErrorContext(ctx, "catalog request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return apperrors.CatalogUnavailable(MsgUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		c.logger.ErrorContext(ctx, "catalog returned error status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return httpclient.ParseResponseError(resp, upstream, resource, id)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return apperrors.CatalogUnavailable(MsgUnreachable, fmt.Errorf("read catalog body: %w", err))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		c.logger.WarnContext(ctx, "catalog returned an empty body", slog.String("path", path))
		return apperrors.InvalidPayload(MsgEmptyResponse, nil)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		c.logger.WarnContext(ctx, "catalog returned malformed JSON",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return apperrors.InvalidPayload(MsgParseError, err)
	}
	return nil
}
