package http

import (
	"net/http"
	"strconv"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/command"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/query"
)

type productRequest struct {
	ProductID uint `json:"product_id"`
}

// decodeProductRequest accepts product_id in the body or, for bodiless DELETEs, the query string
func decodeProductRequest(r *http.Request) (productRequest, error) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		return req, err
	}
	if req.ProductID == 0 {
		if raw := r.URL.Query().Get("product_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return req, domain.Validation("invalid product_id")
			}
			req.ProductID = uint(id)
		}
	}
	return req, nil
}

// AddToWishlist handles POST /api/ecom/wishlist
func (h *FunnelHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProductRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	added, err := h.commands.AddToWishlist.Handle(r.Context(), command.AddToWishlistCommand{
		UserID:    userIDFrom(r.Context()),
		ProductID: req.ProductID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	message := "Product already in wishlist"
	if added {
		h.metrics.wishlistChanges.WithLabelValues("add").Inc()
		message = "Product added to wishlist"
	}
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    map[string]interface{}{"product_id": req.ProductID, "added": added},
	})
}

// RemoveFromWishlist handles DELETE /api/ecom/wishlist
func (h *FunnelHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProductRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	err = h.commands.RemoveFromWishlist.Handle(r.Context(), command.RemoveFromWishlistCommand{
		UserID:    userIDFrom(r.Context()),
		ProductID: req.ProductID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.wishlistChanges.WithLabelValues("remove").Inc()
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product removed from wishlist",
	})
}

// GetWishlist handles GET /api/ecom/wishlist
func (h *FunnelHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	items, err := h.queries.ListWishlist.Handle(r.Context(), query.ListWishlistQuery{
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
			"items": items,
			"total": len(items),
		},
	})
}
