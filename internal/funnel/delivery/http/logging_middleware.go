package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/storefront-funnel/pkg/logger"
)

type accessLogKey struct{}

// accessLog collects what inner layers learn about a request. Auth fills in
// the caller and respondError the error code; LoggingMiddleware reports both.
type accessLog struct {
	userID uint
	code   string
}

func accessLogFrom(ctx context.Context) *accessLog {
	rec, _ := ctx.Value(accessLogKey{}).(*accessLog)
	return rec
}

func noteUser(ctx context.Context, userID uint) {
	if rec := accessLogFrom(ctx); rec != nil {
		rec.userID = userID
	}
}

func noteErrorCode(ctx context.Context, code string) {
	if rec := accessLogFrom(ctx); rec != nil {
		rec.code = code
	}
}

// routeName prefers the mux template so ids don't explode log cardinality
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// LoggingMiddleware writes one structured line per funnel request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &accessLog{}
		ctx := context.WithValue(r.Context(), accessLogKey{}, rec)
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r.WithContext(ctx))

		duration := time.Since(start)
		event := logger.WithContext(ctx).Info()
		switch {
		case ww.statusCode >= 500:
			event = logger.WithContext(ctx).Error()
		case ww.statusCode >= 400:
			event = logger.WithContext(ctx).Warn()
		}

		if rec.userID != 0 {
			event = event.Uint("user_id", rec.userID)
		}
		if rec.code != "" {
			event = event.Str("code", rec.code)
		}

		event.
			Str("method", r.Method).
			Str("route", routeName(r)).
			Int("status", ww.statusCode).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("Funnel request")
	})
}
