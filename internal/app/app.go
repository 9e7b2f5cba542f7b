package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/litreads/internal/catalog"
	"github.com/utafrali/litreads/internal/config"
	"github.com/utafrali/litreads/internal/event"
	handler "github.com/utafrali/litreads/internal/handler/http"
	"github.com/utafrali/litreads/internal/repository"
	"github.com/utafrali/litreads/internal/repository/memory"
	pgrepo "github.com/utafrali/litreads/internal/repository/postgres"
	redisrepo "github.com/utafrali/litreads/internal/repository/redis"
	"github.com/utafrali/litreads/internal/service"
	"github.com/utafrali/litreads/internal/view"
	"github.com/utafrali/litreads/pkg/breaker"
	"github.com/utafrali/litreads/pkg/database"
	"github.com/utafrali/litreads/pkg/health"
	pkgkafka "github.com/utafrali/litreads/pkg/kafka"
	"github.com/utafrali/litreads/pkg/middleware"
	"github.com/utafrali/litreads/pkg/tracing"
)

const (
	serviceName        = "litreads-storefront"
	initTimeout        = 10 * time.Second
	shutdownTimeout    = 10 * time.Second
	slowQueryThreshold = 200 * time.Millisecond
	sweepInterval      = 10 * time.Minute
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error

	// background work owned by the app: limiter eviction, memory sweeping
	bgCtx    context.Context
	bgCancel context.CancelFunc

	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// Partially initialized resources are released when an error is returned.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	a.bgCtx, a.bgCancel = context.WithCancel(context.Background())
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	// Tracing
	tcfg := tracing.DefaultConfig(serviceName)
	tcfg.Environment = cfg.Environment
	tcfg.Enabled = cfg.OTELEnabled
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	if a.tracerShutdown, err = tracing.InitTracer(ctx, tcfg); err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	database.SetSlowQueryLogging(slowQueryThreshold, logger)

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		slog.String("source", cfg.CatalogSource),
		slog.Int("products", cat.Len()),
	)

	// Events
	var notifier service.Notifier = event.Noop{}
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		notifier = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	carts := service.NewCartService(store, cat, notifier, logger)
	prefs := service.NewPreferenceService(store, logger)
	forms := service.NewFormService(carts, notifier, logger)

	renderer, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	// Health checks. Visitor storage gates readiness; the catalog is already
	// in memory and events are best effort.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("storage", store.Ping)
	if a.pool != nil {
		healthHandler.RegisterNonCritical("postgres", a.pool.Ping)
	}
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	router := handler.NewRouter(a.bgCtx,
		handler.NewStorefrontHandler(cat, carts, prefs, forms, renderer, logger),
		handler.NewAPIHandler(cat, carts, logger),
		healthHandler,
		logger,
		handler.RouterConfig{
			PprofCIDRs:   cfg.PprofAllowedCIDRs,
			CookieSecure: cfg.VisitorCookieSecure,
			FormRateLimit: middleware.RateLimitConfig{
				RPS:   cfg.FormRateLimitRPS,
				Burst: cfg.FormRateLimitBurst,

				TrustProxyHeaders: cfg.TrustProxyHeaders,
			},
		},
	)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

// openStore selects the visitor key-value backend.
func (a *App) openStore(ctx context.Context) (repository.Store, error) {
	ttl := a.cfg.CartTTLDuration()

	if a.cfg.StorageBackend == config.StorageMemory {
		store := memory.NewStore(ttl)
		if ttl > 0 {
			go store.RunSweeper(a.bgCtx, sweepInterval)
		}
		a.logger.Info("using in-memory visitor storage", slog.Duration("ttl", ttl))
		return store, nil
	}

	rcfg := database.DefaultRedisConfig()
	rcfg.Addr = a.cfg.RedisAddr
	rcfg.Password = a.cfg.RedisPass
	rcfg.DB = a.cfg.RedisDB

	rdb, err := database.NewRedisClient(ctx, rcfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)
	return redisrepo.NewStore(rdb, ttl, breaker.DefaultConfig("visitor-storage"), a.logger), nil
}

// loadCatalog reads the product list once at boot.
func (a *App) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if a.cfg.CatalogSource != config.CatalogPostgres {
		return catalog.Load(ctx, catalog.EmbeddedSource{})
	}

	pool, err := database.NewPostgresPool(ctx, database.DefaultPostgresConfig(a.cfg.DatabaseURL), a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	return catalog.Load(ctx, pgrepo.NewCatalogRepository(pool))
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.release()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.release()
	a.logger.Info("application shutdown complete")
	return nil
}

// release closes every dependency that was opened. Safe to call on a
// partially built App.
func (a *App) release() {
	a.bgCancel()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
		a.producer = nil
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.rdb = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
		a.tracerShutdown = nil
	}
}
