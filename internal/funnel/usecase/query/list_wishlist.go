package query

import (
	"context"
	"fmt"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// ListWishlistQuery represents the query to list a user's favorites
type ListWishlistQuery struct {
	UserID uint
	Limit  int
	Offset int
}

// ListWishlistHandler handles list wishlist query
type ListWishlistHandler struct {
	wishlist domain.WishlistRepository
}

// NewListWishlistHandler creates a new list wishlist handler
func NewListWishlistHandler(wishlist domain.WishlistRepository) *ListWishlistHandler {
	return &ListWishlistHandler{wishlist: wishlist}
}

// Handle executes the list wishlist query, newest favorites first
func (h *ListWishlistHandler) Handle(ctx context.Context, query ListWishlistQuery) ([]domain.WishlistItem, error) {
	if query.UserID == 0 {
		return nil, domain.Validation("user_id is required")
	}

	items, err := h.wishlist.ListByUser(ctx, nil, query.UserID, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}
