package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}

	healthHandler := health.NewHandler()
	healthHandler.SetTimeout(time.Duration(cfg.HealthTimeoutSecs) * time.Second)

	// Storage backend.
	var repo repository.BlobRepository
	switch cfg.StorageBackend {
	case config.BackendRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB
		redisCfg.SlowCommandThreshold = time.Duration(cfg.SlowCommandThreshold) * time.Millisecond

		client, err := database.NewRedisClient(ctx, redisCfg, logger)
		if err != nil {
			_ = tracerShutdown(context.Background())
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, client, serviceName); err != nil {
			logger.Warn("redis pool metrics not registered", slog.String("error", err.Error()))
		}
		a.redis = client
		repo = redisrepo.NewBlobRepository(client, cfg.CollectionTTL(), logger)
	default:
		logger.Warn("using in-memory storage, collections are lost on restart")
		repo = memory.NewBlobRepository()
	}
	healthHandler.Register("storage", repo.Ping)

	carts := store.NewCollection[domain.CartEntry](repo, cfg.KeyPrefix, store.Cart, logger)
	wishlists := store.NewCollection[int](repo, cfg.KeyPrefix, store.Wishlist, logger)

	// Catalog client with circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = time.Duration(cfg.CatalogTimeoutSecs) * time.Second
	clientCfg.MaxRetries = cfg.CatalogMaxRetries
	clientCfg.RetryWaitMin = 500 * time.Millisecond
	baseClient := httpclient.New(clientCfg)

	cbCfg := httpclient.DefaultCircuitBreakerConfig("catalog")
	cbCfg.MaxRequests = cfg.CBMaxRequests
	cbCfg.Interval = time.Duration(cfg.CBInterval) * time.Second
	cbCfg.Timeout = time.Duration(cfg.CBTimeout) * time.Second
	cbCfg.FailureRatio = cfg.CBFailureRatio
	cbCfg.MinRequests = cfg.CBMinRequests
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger).
		WithFallback(catalog.CircuitOpenFallback)
	logger.Info("circuit breaker initialized",
		slog.String("name", cbCfg.Name),
		slog.Uint64("max_requests", uint64(cbCfg.MaxRequests)),
		slog.Int("timeout_seconds", cfg.CBTimeout),
		slog.Uint64("min_requests", uint64(cbCfg.MinRequests)),
	)
	healthHandler.Register("catalog", cbClient.Check)

	catalogClient := catalog.NewClient(cbClient, cfg.CatalogBaseURL, catalog.NewAdapter(cfg.DiscountSeed), logger)

	// Domain events.
	var publisher service.EventPublisher = event.Nop{}
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(a.producer, logger)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	notifier := service.NewNotifier(cfg.SubscriberBufferSize)
	svcs := handler.Services{
		Products:  service.NewProductService(catalogClient),
		Carts:     service.NewCartService(carts, catalogClient, publisher, notifier, cfg.MaxQuantity, logger),
		Wishlists: service.NewWishlistService(wishlists, catalogClient, publisher, notifier, logger),
		Badges:    service.NewBadgeService(carts, wishlists),
		Notifier:  notifier,
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	router := handler.NewRouter(svcs, healthHandler, handler.RouterConfig{
		CORS:            cors,
		PageSize:        cfg.PageSize,
		CatalogMaxAge:   cfg.CatalogCacheMaxAge,
		RequestTimeout:  time.Duration(cfg.RequestTimeoutSecs) * time.Second,
		StreamHeartbeat: time.Duration(cfg.StreamHeartbeatSecs) * time.Second,
	}, logger)

	// The change stream clears its own write deadline.
	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown does not cancel request contexts; ending the subscriptions
	// lets open change streams return.
	a.httpServer.RegisterOnShutdown(notifier.Close)

	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", ln.Addr().String()),
		)
		if err := a.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka producer, Redis client.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	timeout := time.Duration(a.cfg.ShutdownTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpCtx, httpCancel := context.WithTimeout(context.Background(), timeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
