package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		tp.Shutdown(context.Background()) //nolint:errcheck
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func tracedRouter(status int) http.Handler {
	r := chi.NewRouter()
	r.Use(Tracing)
	r.Get("/api/v1/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
	return r
}

func attrMap(s tracetest.SpanStub) map[string]any {
	out := make(map[string]any, len(s.Attributes))
	for _, a := range s.Attributes {
		out[string(a.Key)] = a.Value.AsInterface()
	}
	return out
}

func TestTracing_SpanNamedByRoute(t *testing.T) {
	exporter := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/7", nil)
	req.Header.Set(ClientIDHeader, "browser-1")
	tracedRouter(http.StatusOK).ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/products/{id}", spans[0].Name)

	attrs := attrMap(spans[0])
	assert.Equal(t, "/api/v1/products/{id}", attrs["http.route"])
	assert.Equal(t, int64(200), attrs["http.status_code"])
	assert.Equal(t, "browser-1", attrs["storefront.client_id"])
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	tracedRouter(http.StatusBadGateway).ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/v1/products/7", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTracing_ClientErrorLeavesStatusUnset(t *testing.T) {
	exporter := setupTestTracer(t)

	tracedRouter(http.StatusNotFound).ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/v1/products/7", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	exporter := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/7", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	tracedRouter(http.StatusOK).ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.NotEmpty(t, rec.Header().Get("traceparent"))
}
