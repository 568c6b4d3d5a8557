// AngelaMos | 2026
// serve.go

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/agriconnect/internal/admin"
	"github.com/carterperez-dev/agriconnect/internal/advisory"
	"github.com/carterperez-dev/agriconnect/internal/auth"
	"github.com/carterperez-dev/agriconnect/internal/cart"
	"github.com/carterperez-dev/agriconnect/internal/community"
	"github.com/carterperez-dev/agriconnect/internal/config"
	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/farm"
	"github.com/carterperez-dev/agriconnect/internal/health"
	"github.com/carterperez-dev/agriconnect/internal/middleware"
	"github.com/carterperez-dev/agriconnect/internal/record"
	"github.com/carterperez-dev/agriconnect/internal/server"
	"github.com/carterperez-dev/agriconnect/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

//nolint:funlen // bootstrap code is inherently verbose
func run(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized", "algorithm", "ES256")

	var (
		sessions      auth.SessionStore
		recordBackend record.Backend
	)
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		sessions = auth.NewMemorySessionStore()
		recordBackend = record.NewMemoryBackend()
	case config.StoreBackendRedis:
		sessions = auth.NewRedisSessionStore(redis.Client)
		recordBackend = record.NewRedisBackend(redis.Client)
	default:
		sessions = auth.NewRedisSessionStore(redis.Client)
		recordBackend = record.NewSQLBackend(db.DB)
	}
	records := record.NewStore(recordBackend, cfg.Store.Prefix, logger)
	logger.Info("record store ready",
		"backend", cfg.Store.Backend,
		"prefix", cfg.Store.Prefix,
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)

	authSvc := auth.NewService(sessions, jwtManager, userSvc, auth.ServiceConfig{
		SessionTTL:      cfg.Auth.SessionTTL,
		VerifyPasswords: cfg.Auth.VerifyPasswords,
		Logger:          logger,
	})
	authHandler := auth.NewHandler(authSvc)

	provider, err := advisory.NewGeminiProvider(ctx, cfg.Gemini)
	if err != nil {
		return err
	}
	gateway := advisory.NewGateway(provider, advisory.GatewayConfig{
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
		Logger:  logger,
		Tracer:  telemetry.Tracer,
	})
	advisoryHandler := advisory.NewHandler(gateway, logger)

	cartHandler := cart.NewHandler(cart.NewService(records, cfg.Payment, logger))
	farmHandler := farm.NewHandler(farm.NewService(records))
	communityHandler := community.NewHandler(community.NewService(records))

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(telemetry.Tracer))
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.Per(
				cfg.RateLimit.Window,
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			Logger: logger,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	advisoryLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Prefix: "advisory:",
		Limit: middleware.PerMinute(
			cfg.RateLimit.AdvisoryRequests,
			cfg.RateLimit.AdvisoryBurst,
		),
		KeyFunc: middleware.KeyByUserAndEndpoint,
		Logger:  logger,
	}).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		advisoryHandler.RegisterRoutes(r, authenticator, advisoryLimiter)
		cartHandler.RegisterRoutes(r, authenticator)
		farmHandler.RegisterRoutes(r, authenticator)
		communityHandler.RegisterRoutes(r, authenticator)

		if cfg.Admin.APIKey != "" {
			admin.NewHandler(admin.HandlerConfig{
				DBStats:      db.Stats,
				RedisStats:   redis.PoolStats,
				DBPing:       db.Ping,
				RedisPing:    redis.Ping,
				GatewayStats: gateway.Stats,
				UserCount:    userSvc.Count,
				Logger:       logger,
			}).RegisterRoutes(r, middleware.RequireAPIKey(cfg.Admin.APIKey))
		}
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	stats := gateway.Stats()
	logger.Info("advisory gateway totals",
		"calls", stats.Calls,
		"failures", stats.Failures,
		"shared", stats.SharedResults,
	)

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}
