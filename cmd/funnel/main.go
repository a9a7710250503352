package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tair/storefront-funnel/internal/funnel"
	"github.com/tair/storefront-funnel/internal/funnel/cache"
	"github.com/tair/storefront-funnel/internal/funnel/config"
	httpDelivery "github.com/tair/storefront-funnel/internal/funnel/delivery/http"
	_ "github.com/tair/storefront-funnel/internal/funnel/docs"
	"github.com/tair/storefront-funnel/internal/funnel/repository"
	"github.com/tair/storefront-funnel/kafka"
	"github.com/tair/storefront-funnel/pkg/auth"
	"github.com/tair/storefront-funnel/pkg/database"
	"github.com/tair/storefront-funnel/pkg/logger"
	"github.com/tair/storefront-funnel/pkg/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting funnel service")

	// Initialize tracer
	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.ServiceName,
		JaegerEndpoint: cfg.JaegerURL,
		SampleRatio:    cfg.TraceRatio,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize token service")
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.Migrate(context.Background(), db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	opts := funnel.Options{
		Tokens:         tokens,
		AsyncViews:     cfg.AsyncViews,
		RequestTimeout: cfg.RequestTimeout,
	}

	// Redis backs view deduplication and rate limiting; both are optional
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Redis unavailable, view dedup and rate limiting disabled")
		} else {
			defer redisClient.Close()
			if cfg.ViewDedupWindow > 0 {
				opts.Deduplicator = cache.NewViewDeduplicator(redisClient, cfg.ViewDedupWindow)
			}
			if cfg.RateLimit > 0 {
				opts.RateLimiter = cache.NewRateLimiter(redisClient, cfg.RateLimit, cfg.RateLimitWindow)
			}
		}
	}

	// Kafka is optional; without it orders are not announced and views are recorded inline
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka unavailable, events will not be published")
		} else {
			defer publisher.Close()
			opts.Publisher = publisher
		}
	}

	// Initialize handler with Wire DI
	handler, err := funnel.InitializeHTTPHandler(db, opts)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	logger.Logger.Info().
		Bool("publisher", opts.Publisher != nil).
		Bool("view_dedup", opts.Deduplicator != nil).
		Bool("rate_limit", opts.RateLimiter != nil).
		Bool("async_views", cfg.AsyncViews).
		Msg("Funnel handler initialized")

	server := newHTTPServer(handler, sqlDB, cfg.HTTPPort)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}

func newHTTPServer(handler *httpDelivery.FunnelHandler, db *sql.DB, port string) *http.Server {
	// Setup router
	router := mux.NewRouter()

	// Register all middlewares using middleware registration system
	httpDelivery.RegisterMiddlewares(router, handler.GetMiddlewareConfig())

	// Register routes
	handler.RegisterRoutes(router)

	// Health check endpoint
	handler.RegisterHealthCheck(router, db)

	// Swagger UI
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
