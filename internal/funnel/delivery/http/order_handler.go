package http

import (
	"net/http"

	"github.com/tair/storefront-funnel/internal/funnel/usecase/command"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/query"
)

type createOrderRequest struct {
	Metadata map[string]interface{} `json:"metadata"`
}

// CreateOrder handles POST /api/ecom/orders
func (h *FunnelHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	order, err := h.commands.Checkout.Handle(r.Context(), command.CheckoutCommand{
		UserID:   userIDFrom(r.Context()),
		Metadata: req.Metadata,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.ordersPlaced.Inc()
	h.metrics.orderValue.Add(order.Total.InexactFloat64())

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order created successfully",
		Data: map[string]interface{}{
			"order_id":  order.ID,
			"reference": order.Reference,
			"total":     order.Total,
			"status":    order.Status,
		},
	})
}

// GetMyOrders handles GET /api/ecom/orders
func (h *FunnelHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	orders, err := h.queries.ListOrders.Handle(r.Context(), query.ListOrdersQuery{
		UserID: userIDFrom(r.Context()),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"orders": orders,
			"total":  len(orders),
		},
	})
}

// GetOrder handles GET /api/ecom/orders/{id}
func (h *FunnelHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "order")
	if err != nil {
		respondError(w, r, err)
		return
	}

	order, err := h.queries.GetOrder.Handle(r.Context(), query.GetOrderQuery{
		OrderID: id,
		UserID:  userIDFrom(r.Context()),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    order,
	})
}

// ListAllOrders handles GET /api/ecom/admin/orders
func (h *FunnelHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	orders, err := h.queries.ListAllOrders.Handle(r.Context(), query.ListAllOrdersQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"orders": orders,
			"total":  len(orders),
		},
	})
}
