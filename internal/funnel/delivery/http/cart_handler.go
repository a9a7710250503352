package http

import (
	"net/http"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/command"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/query"
)

type cartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  *int `json:"quantity"`
}

// AddToCart handles POST /api/ecom/cart. An omitted quantity means one.
func (h *FunnelHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.commands.AddCartItem.Handle(r.Context(), command.AddCartItemCommand{
		UserID:    userIDFrom(r.Context()),
		ProductID: req.ProductID,
		Quantity:  quantity,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Cart updated",
		Data:    item,
	})
}

// UpdateCartItem handles PUT /api/ecom/cart
func (h *FunnelHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Quantity == nil {
		respondError(w, r, domain.Validation("quantity is required"))
		return
	}

	err := h.commands.UpdateCartItem.Handle(r.Context(), command.UpdateCartItemCommand{
		UserID:    userIDFrom(r.Context()),
		ProductID: req.ProductID,
		Quantity:  *req.Quantity,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Cart item updated",
	})
}

// RemoveCartItem handles DELETE /api/ecom/cart
func (h *FunnelHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProductRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	err = h.commands.RemoveCartItem.Handle(r.Context(), command.RemoveCartItemCommand{
		UserID:    userIDFrom(r.Context()),
		ProductID: req.ProductID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Cart item removed",
	})
}

// GetCart handles GET /api/ecom/cart
func (h *FunnelHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.queries.GetCart.Handle(r.Context(), query.GetCartQuery{UserID: userIDFrom(r.Context())})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    snapshot,
	})
}
