package query

import (
	"context"
	"fmt"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// ListOrdersQuery represents the query to get a user's own orders.
// A zero Limit returns every order.
type ListOrdersQuery struct {
	UserID uint
	Limit  int
	Offset int
}

// ListOrdersHandler handles list orders query
type ListOrdersHandler struct {
	orders domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(orders domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{orders: orders}
}

// Handle executes the list orders query, newest first
func (h *ListOrdersHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]domain.Order, error) {
	if query.UserID == 0 {
		return nil, domain.Validation("user_id is required")
	}

	orders, err := h.orders.FindByUser(ctx, nil, query.UserID, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}
	return orders, nil
}

// ListAllOrdersQuery represents the admin query over every order
type ListAllOrdersQuery struct {
	Limit  int
	Offset int
}

// ListAllOrdersHandler handles list all orders query
type ListAllOrdersHandler struct {
	orders domain.OrderRepository
}

// NewListAllOrdersHandler creates a new list all orders handler
func NewListAllOrdersHandler(orders domain.OrderRepository) *ListAllOrdersHandler {
	return &ListAllOrdersHandler{orders: orders}
}

func (h *ListAllOrdersHandler) Handle(ctx context.Context, query ListAllOrdersQuery) ([]domain.Order, error) {
	orders, err := h.orders.FindAll(ctx, nil, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
