package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler()
	h.Register("redis", func(ctx context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReadinessHandler_AllHealthy(t *testing.T) {
	h := NewHandler()
	h.Register("redis", func(ctx context.Context) error { return nil })
	h.Register("catalog", func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Equal(t, StatusUp, resp.Checks["redis"].Status)
	assert.Equal(t, StatusUp, resp.Checks["catalog"].Status)
}

func TestReadinessHandler_OneDown(t *testing.T) {
	h := NewHandler()
	h.Register("redis", func(ctx context.Context) error { return errors.New("connection refused") })
	h.Register("catalog", func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	assert.Equal(t, StatusUp, resp.Checks["catalog"].Status)
}

func TestReadinessHandler_NoCheckers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler().ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, decode(t, rec).Status)
}

func TestCheck_TimeoutMarksDown(t *testing.T) {
	h := NewHandler()
	h.SetTimeout(20 * time.Millisecond)
	h.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	resp := h.Check(context.Background())
	assert.Equal(t, StatusDown, resp.Status)
	assert.Contains(t, resp.Checks["slow"].Error, "deadline exceeded")
}
