package query

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// GetCartQuery represents the query to render a user's cart
type GetCartQuery struct {
	UserID uint
}

// GetCartHandler handles get cart query
type GetCartHandler struct {
	uow   domain.UnitOfWork
	carts domain.CartRepository
}

// NewGetCartHandler creates a new get cart handler
func NewGetCartHandler(uow domain.UnitOfWork, carts domain.CartRepository) *GetCartHandler {
	return &GetCartHandler{uow: uow, carts: carts}
}

// Handle executes the get cart query. A user without a cart gets an empty snapshot.
func (h *GetCartHandler) Handle(ctx context.Context, query GetCartQuery) (domain.CartSnapshot, error) {
	if query.UserID == 0 {
		return domain.CartSnapshot{}, domain.Validation("user_id is required")
	}

	snapshot := domain.NewCartSnapshot(0, nil)
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		cart, err := h.carts.FindByUser(ctx, tx, query.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		lines, err := h.carts.Lines(ctx, tx, cart.ID, false)
		if err != nil {
			return err
		}
		snapshot = domain.NewCartSnapshot(cart.ID, lines)
		return nil
	})
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	return snapshot, nil
}
