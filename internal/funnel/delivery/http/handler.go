package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/command"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/query"
	"github.com/tair/storefront-funnel/pkg/logger"
)

// Commands groups the funnel's write-side handlers
type Commands struct {
	AddToWishlist      *command.AddToWishlistHandler
	RemoveFromWishlist *command.RemoveFromWishlistHandler
	AddCartItem        *command.AddCartItemHandler
	UpdateCartItem     *command.UpdateCartItemHandler
	RemoveCartItem     *command.RemoveCartItemHandler
	Checkout           *command.CheckoutHandler
	RecordView         *command.RecordViewHandler
	ReconcileCounters  *command.ReconcileCountersHandler
}

// Queries groups the funnel's read-side handlers
type Queries struct {
	ListWishlist  *query.ListWishlistHandler
	GetCart       *query.GetCartHandler
	ListOrders    *query.ListOrdersHandler
	GetOrder      *query.GetOrderHandler
	ListAllOrders *query.ListAllOrdersHandler
	GetCounters   *query.GetCountersHandler
}

// FunnelHandler handles HTTP requests for the wishlist, cart and orders using CQRS pattern
type FunnelHandler struct {
	commands       Commands
	queries        Queries
	middleware     MiddlewareConfig
	metrics        *Metrics
	requestTimeout time.Duration
}

// NewFunnelHandlerWithDI creates a new funnel handler using dependency injection
func NewFunnelHandlerWithDI(commands Commands, queries Queries, middleware MiddlewareConfig, metrics *Metrics, requestTimeout RequestTimeout) *FunnelHandler {
	return &FunnelHandler{
		commands:       commands,
		queries:        queries,
		middleware:     middleware,
		metrics:        metrics,
		requestTimeout: time.Duration(requestTimeout),
	}
}

// RequestTimeout is the per-request deadline applied to funnel operations
type RequestTimeout time.Duration

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// GetMiddlewareConfig returns middleware configuration
func (h *FunnelHandler) GetMiddlewareConfig() MiddlewareConfig {
	return h.middleware
}

// RegisterRoutes registers all funnel routes
func (h *FunnelHandler) RegisterRoutes(router *mux.Router) {
	authed := h.middleware.GetAuthMiddleware()
	optional := h.middleware.GetOptionalAuthMiddleware()
	admin := h.middleware.GetAdminMiddleware()

	route := func(path, method string, guard func(http.HandlerFunc) http.HandlerFunc, fn http.HandlerFunc) {
		wrapped := TimeoutMiddleware(h.requestTimeout)(fn)
		if guard != nil {
			wrapped = guard(wrapped)
		}
		router.HandleFunc(path, h.metrics.instrument(path, wrapped)).Methods(method)
	}

	// Authenticated user routes
	route("/api/ecom/wishlist", http.MethodPost, authed, h.AddToWishlist)
	route("/api/ecom/wishlist", http.MethodDelete, authed, h.RemoveFromWishlist)
	route("/api/ecom/wishlist", http.MethodGet, authed, h.GetWishlist)
	route("/api/ecom/cart", http.MethodPost, authed, h.AddToCart)
	route("/api/ecom/cart", http.MethodPut, authed, h.UpdateCartItem)
	route("/api/ecom/cart", http.MethodDelete, authed, h.RemoveCartItem)
	route("/api/ecom/cart", http.MethodGet, authed, h.GetCart)
	route("/api/ecom/orders", http.MethodPost, authed, h.CreateOrder)
	route("/api/ecom/orders", http.MethodGet, authed, h.GetMyOrders)
	route("/api/ecom/orders/{id}", http.MethodGet, authed, h.GetOrder)

	// Public routes
	route("/api/ecom/product/view", http.MethodPost, optional, h.RecordView)
	route("/api/ecom/products/{id}/counters", http.MethodGet, nil, h.GetCounters)

	// Admin routes
	route("/api/ecom/admin/orders", http.MethodGet, admin, h.ListAllOrders)
	route("/api/ecom/admin/counters/reconcile", http.MethodPost, admin, h.ReconcileCounters)
}

// RegisterHealthCheck registers health check endpoint
func (h *FunnelHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Funnel service is healthy",
		})
	}).Methods("GET")
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindEmptyCart:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the public side of err; storage detail only reaches the log
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	message := domain.PublicMessage(err)
	noteErrorCode(r.Context(), string(kind))

	if kind == domain.KindInternal {
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
			message = "request timed out"
		}
		logger.Error(r.Context()).
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Funnel operation failed")
	}

	respondJSON(w, status, Response{
		Success: false,
		Error:   message,
		Code:    string(kind),
	})
}

// decodeBody reads an optional JSON body; an empty body leaves req untouched
func decodeBody(r *http.Request, req interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(req)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return domain.Validation("invalid request body")
	}
	return nil
}

// pathID parses a positive numeric path variable
func pathID(r *http.Request, name, what string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || id == 0 {
		return 0, domain.Validation("invalid %s id", what)
	}
	return uint(id), nil
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
