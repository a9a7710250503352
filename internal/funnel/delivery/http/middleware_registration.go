package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/storefront-funnel/internal/funnel/cache"
	"github.com/tair/storefront-funnel/pkg/auth"
)

// MiddlewareConfig holds middleware configuration
type MiddlewareConfig struct {
	EnableLogging bool
	EnableTracing bool
	Tokens        *auth.TokenService
	RateLimiter   *cache.RateLimiter
}

// DefaultMiddlewareConfig returns default middleware configuration
func DefaultMiddlewareConfig(tokens *auth.TokenService, limiter *cache.RateLimiter) MiddlewareConfig {
	return MiddlewareConfig{
		EnableLogging: true,
		EnableTracing: true,
		Tokens:        tokens,
		RateLimiter:   limiter,
	}
}

// RegisterMiddlewares registers all middlewares to the router
func RegisterMiddlewares(router *mux.Router, config MiddlewareConfig) {
	// Tracing first so request logs carry the trace id
	if config.EnableTracing {
		router.Use(func(next http.Handler) http.Handler {
			return TracingMiddleware("http-request", next)
		})
	}

	if config.EnableLogging {
		router.Use(LoggingMiddleware)
	}
}

// GetAuthMiddleware returns the auth middleware followed by the rate limiter
func (config MiddlewareConfig) GetAuthMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	authenticate := AuthMiddleware(config.Tokens)
	limit := RateLimitMiddleware(config.RateLimiter)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return authenticate(limit(next))
	}
}

// GetOptionalAuthMiddleware returns the optional auth middleware followed by the rate limiter
func (config MiddlewareConfig) GetOptionalAuthMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	authenticate := OptionalAuthMiddleware(config.Tokens)
	limit := RateLimitMiddleware(config.RateLimiter)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return authenticate(limit(next))
	}
}

// GetAdminMiddleware returns the admin middleware
func (config MiddlewareConfig) GetAdminMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return AdminMiddleware(config.Tokens)
}
