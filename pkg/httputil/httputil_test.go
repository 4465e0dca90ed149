package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *ErrorResponse {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusCreated, map[string]int{"count": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"count":2}}`, rec.Body.String())
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/9", nil)

	WriteError(rec, req, apperrors.NotFound("product", "9"), testLogger())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", e.Code)
	assert.Equal(t, "product with id 9 not found", e.Message)
}

func TestWriteError_WrappedCatalogError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil)

	err := fmt.Errorf("hydrate: %w", apperrors.InvalidPayload("received an empty response", nil))
	WriteError(rec, req, err, testLogger())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "INVALID_CATALOG_DATA", e.Code)
	assert.Equal(t, "received an empty response", e.Message)
}

func TestWriteError_BareConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)

	WriteError(rec, req, fmt.Errorf("save cart: %w", apperrors.ErrConflict), testLogger())

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decodeError(t, rec).Code)
}

func TestWriteError_UnknownErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)

	WriteError(rec, req, fmt.Errorf("redis: i/o timeout"), testLogger())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", e.Code)
	assert.NotContains(t, e.Message, "redis")
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithCorrelationID(context.Background(), "req-42"))

	WriteError(rec, req, apperrors.InvalidInput("bad"), testLogger())

	assert.Equal(t, "req-42", decodeError(t, rec).RequestID)
}

func TestWriteError_Validation(t *testing.T) {
	type body struct {
		ProductID int `json:"product_id" validate:"required"`
	}
	var dst body
	err := validator.DecodeAndValidate(
		httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), &dst)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil), err, testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", e.Code)
	assert.Equal(t, "is required", e.Fields["product_id"])
}

func TestWriteError_MalformedBody(t *testing.T) {
	var dst struct {
		ProductID int `json:"product_id"`
	}
	err := validator.DecodeAndValidate(
		httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":`)), &dst)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil), err, testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}

func TestWriteError_FieldError(t *testing.T) {
	err := validator.Var("quantity", 9, "gte=1,lte=5")

	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPut, "/", nil), err, testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "must be at most 5", e.Fields["quantity"])
}

func TestParseID(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := ParseID(rec, "product id", "17")
	assert.True(t, ok)
	assert.Equal(t, 17, id)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		rec := httptest.NewRecorder()
		_, ok := ParseID(rec, "product id", bad)
		assert.False(t, ok, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_PARAMETER", decodeError(t, rec).Code)
	}
}
