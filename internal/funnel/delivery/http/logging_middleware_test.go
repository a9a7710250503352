package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/pkg/auth"
	"github.com/tair/storefront-funnel/pkg/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.InitWithWriter("funnel-test", false, &buf)
	t.Cleanup(func() { logger.Logger = zerolog.Logger{} })
	return &buf
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &line))
	return line
}

func TestLoggingMiddlewareRecordsCallerAndErrorCode(t *testing.T) {
	buf := captureLogs(t)
	tokens, err := auth.NewTokenService("secret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.GenerateToken(42, "ann", "user")
	require.NoError(t, err)

	router := mux.NewRouter()
	router.Use(LoggingMiddleware)
	router.HandleFunc("/api/ecom/order/{id}", AuthMiddleware(tokens)(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, domain.NotFound("order"))
	})).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/api/ecom/order/17", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	line := lastLogLine(t, buf)
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "/api/ecom/order/{id}", line["route"])
	assert.EqualValues(t, 42, line["user_id"])
	assert.Equal(t, string(domain.KindNotFound), line["code"])
	assert.EqualValues(t, 404, line["status"])
}

func TestLoggingMiddlewareAnonymousSuccess(t *testing.T) {
	buf := captureLogs(t)

	router := mux.NewRouter()
	router.Use(LoggingMiddleware)
	router.HandleFunc("/api/ecom/product/view", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, Response{Success: true})
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/ecom/product/view", nil))

	line := lastLogLine(t, buf)
	assert.Equal(t, "info", line["level"])
	assert.NotContains(t, line, "user_id")
	assert.NotContains(t, line, "code")
}
