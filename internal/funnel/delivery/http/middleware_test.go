package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront-funnel/internal/funnel/cache"
	"github.com/tair/storefront-funnel/pkg/auth"
)

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := RateLimitMiddleware(cache.NewRateLimiter(client, 1, time.Minute))(ok)

	req := httptest.NewRequest(http.MethodGet, "/api/ecom/cart", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/api/ecom/cart", nil)
	other = other.WithContext(context.WithValue(other.Context(), UserIDKey, uint(5)))
	other.RemoteAddr = "10.0.0.1:5555"
	rec = httptest.NewRecorder()
	h(rec, other)
	assert.Equal(t, http.StatusNoContent, rec.Code, "users are limited separately from their IP")

	mr.Close()
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code, "limiter outage lets requests through")
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	RateLimitMiddleware(nil)(ok)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	h := TimeoutMiddleware(50 * time.Millisecond)(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusNoContent)
	})

	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, time.Second)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	tokens, err := auth.NewTokenService("secret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.GenerateToken(11, "ann", "user")
	require.NoError(t, err)

	var seen uint
	h := OptionalAuthMiddleware(tokens)(func(w http.ResponseWriter, r *http.Request) {
		seen = userIDFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ecom/product/view", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h(httptest.NewRecorder(), req)
	assert.Equal(t, uint(11), seen)

	req = httptest.NewRequest(http.MethodPost, "/api/ecom/product/view", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, uint(0), seen)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
