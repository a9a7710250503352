package command

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// RemoveCartItemCommand drops a product line from the user's cart
type RemoveCartItemCommand struct {
	UserID    uint
	ProductID uint
}

// RemoveCartItemHandler handles remove cart item command
type RemoveCartItemHandler struct {
	uow    domain.UnitOfWork
	carts  domain.CartRepository
	ledger domain.LedgerRepository
}

// NewRemoveCartItemHandler creates a new remove cart item handler
func NewRemoveCartItemHandler(uow domain.UnitOfWork, carts domain.CartRepository, ledger domain.LedgerRepository) *RemoveCartItemHandler {
	return &RemoveCartItemHandler{uow: uow, carts: carts, ledger: ledger}
}

// Handle executes the remove cart item command
func (h *RemoveCartItemHandler) Handle(ctx context.Context, cmd RemoveCartItemCommand) error {
	if err := requireUser(cmd.UserID); err != nil {
		return err
	}
	if cmd.ProductID == 0 {
		return domain.Validation("product_id is required")
	}

	return h.uow.Do(ctx, func(tx *gorm.DB) error {
		cart, err := h.carts.FindByUser(ctx, tx, cmd.UserID)
		if err != nil {
			return notFoundAs(err, "cart item")
		}

		deleted, err := h.carts.DeleteItem(ctx, tx, cart.ID, cmd.ProductID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NotFound("cart item")
		}

		return h.ledger.RecordEvent(ctx, tx, domain.LedgerEntry{
			ProductID: cmd.ProductID,
			Kind:      domain.EventCartRemove,
			Meta:      domain.EventMeta(cmd.UserID, map[string]interface{}{"cart_id": cart.ID}),
		})
	})
}
