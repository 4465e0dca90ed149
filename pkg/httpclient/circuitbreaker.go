package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the number of trial requests let through while half-open.
	// 0 means 1.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically. 0 never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once reached.
	FailureRatio float64

	// MinRequests must be seen before FailureRatio is evaluated.
	MinRequests uint32
}

// DefaultCircuitBreakerConfig returns the catalog's breaker defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// FallbackFunc answers a request the breaker rejected. err is ErrCircuitOpen
// or gobreaker.ErrTooManyRequests.
type FallbackFunc func(ctx context.Context, err error) (*http.Response, error)

// ErrCircuitOpen is returned when the breaker rejects a request.
var ErrCircuitOpen = gobreaker.ErrOpenState

// Request outcomes recorded by the breaker.
const (
	resultSuccess  = "success"
	resultFailure  = "failure"
	resultRejected = "rejected"
)

var (
	circuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Name:      "circuit_breaker_state",
			Help:      "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	circuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "circuit_breaker_requests_total",
			Help:      "Requests seen by the circuit breaker by result",
		},
		[]string{"name", "result"},
	)

	circuitBreakerFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "circuit_breaker_fallback_invoked_total",
			Help:      "Total number of times the circuit breaker fallback was invoked",
		},
		[]string{"name"},
	)
)

func init() {
	prometheus.MustRegister(circuitBreakerState, circuitBreakerRequests, circuitBreakerFallbackTotal)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// CircuitBreakerClient guards a Client with a circuit breaker. Transport
// errors, 429 and 5xx responses count as failures; a request canceled by
// its caller does not.
type CircuitBreakerClient struct {
	client   *Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	logger   *slog.Logger
	fallback FallbackFunc
	name     string
}

// NewCircuitBreakerClient wraps client with a breaker configured by cbCfg.
func NewCircuitBreakerClient(client *Client, cbCfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	settings := gobreaker.Settings{
		Name:        cbCfg.Name,
		MaxRequests: cbCfg.MaxRequests,
		Interval:    cbCfg.Interval,
		Timeout:     cbCfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cbCfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cbCfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			circuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	circuitBreakerState.WithLabelValues(cbCfg.Name).Set(0)

	return &CircuitBreakerClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		logger:  logger,
		name:    cbCfg.Name,
	}
}

// WithFallback returns a copy that answers rejected requests with fn instead
// of ErrCircuitOpen. The copy shares the breaker.
func (c *CircuitBreakerClient) WithFallback(fn FallbackFunc) *CircuitBreakerClient {
	cpy := *c
	cpy.fallback = fn
	return &cpy
}

// Do executes req through the breaker. A failing status is returned as a
// *StatusError with the response body consumed.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if trips(resp.StatusCode) {
			return nil, readStatusError(resp, c.name)
		}
		return resp, nil
	})

	switch {
	case err == nil:
		circuitBreakerRequests.WithLabelValues(c.name, resultSuccess).Inc()
		return resp, nil
	case errors.Is(err, ErrCircuitOpen), errors.Is(err, gobreaker.ErrTooManyRequests):
		circuitBreakerRequests.WithLabelValues(c.name, resultRejected).Inc()
		if c.fallback == nil {
			return nil, err
		}
		circuitBreakerFallbackTotal.WithLabelValues(c.name).Inc()
		c.logger.WarnContext(ctx, "circuit breaker open, invoking fallback",
			slog.String("breaker", c.name),
		)
		return c.fallback(ctx, err)
	default:
		circuitBreakerRequests.WithLabelValues(c.name, resultFailure).Inc()
		return nil, err
	}
}

// State returns the current state of the breaker.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}

// Check is a readiness probe: it fails while the breaker is open.
func (c *CircuitBreakerClient) Check(context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
	}
	return nil
}

func trips(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func readStatusError(resp *http.Response, upstream string) *StatusError {
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Upstream:   upstream,
		StatusCode: resp.StatusCode,
		Message:    upstreamMessage(body),
	}
}
