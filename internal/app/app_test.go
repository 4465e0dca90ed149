package app

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/config"
)

func testConfig(catalogURL string) *config.Config {
	return &config.Config{
		Environment:         "test",
		HTTPPort:            0,
		RequestTimeoutSecs:  5,
		StreamHeartbeatSecs: 1,
		CORSAllowedOrigins:  []string{"*"},
		CatalogBaseURL:      catalogURL,
		CatalogTimeoutSecs:  2,
		CBMaxRequests:       1,
		CBInterval:          60,
		CBTimeout:           30,
		CBFailureRatio:      0.5,
		CBMinRequests:       5,
		StorageBackend:      config.BackendMemory,
		KeyPrefix:           "storefront",
		MaxQuantity:         5,
		PageSize:            8,
		OTELSampleRate:      1,
	}
}

func newCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/products/4":
			_, _ = io.WriteString(w, `{"id":4,"title":"Mens Casual Slim Fit","price":15.99,"category":"men's clothing","discountPercentage":10,"rating":{"rate":2.1,"count":430}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewApp_MemoryBackend(t *testing.T) {
	catalogSrv := newCatalog(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := NewApp(testConfig(catalogSrv.URL), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/cart/items", strings.NewReader(`{"product_id":4}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", "app-test")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data struct {
			Changed bool `json:"changed"`
			Result  struct {
				Total string `json:"total"`
			} `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Data.Changed)
	assert.Equal(t, "14.39", body.Data.Result.Total)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	a, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Nil(t, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestRun_ShutsDownWithOpenChangeStream(t *testing.T) {
	catalogSrv := newCatalog(t)
	cfg := testConfig(catalogSrv.URL)
	cfg.ShutdownTimeoutSecs = 5

	a, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	req, err := http.NewRequest(http.MethodGet, "http://"+ln.Addr().String()+"/api/v1/events", nil)
	require.NoError(t, err)
	req.Header.Set("X-Client-ID", "stream-client")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ready\n", line)

	start := time.Now()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
	case <-time.After(4 * time.Second):
		t.Fatal("shutdown waited on the open change stream")
	}
}
