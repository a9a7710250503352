package query

import (
	"context"
	"errors"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// GetOrderQuery represents the query to get one of the user's orders
type GetOrderQuery struct {
	OrderID uint
	UserID  uint
}

// GetOrderHandler handles get order query
type GetOrderHandler struct {
	orders domain.OrderRepository
}

// NewGetOrderHandler creates a new get order handler
func NewGetOrderHandler(orders domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{orders: orders}
}

// Handle executes the get order query. Someone else's order is reported as missing.
func (h *GetOrderHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if query.UserID == 0 {
		return nil, domain.Validation("user_id is required")
	}
	if query.OrderID == 0 {
		return nil, domain.Validation("invalid order id")
	}

	order, err := h.orders.FindForUser(ctx, nil, query.OrderID, query.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("order")
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}
