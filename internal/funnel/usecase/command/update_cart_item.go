package command

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// UpdateCartItemCommand sets the absolute quantity of an existing cart line
type UpdateCartItemCommand struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// UpdateCartItemHandler handles update cart item command
type UpdateCartItemHandler struct {
	uow    domain.UnitOfWork
	carts  domain.CartRepository
	ledger domain.LedgerRepository
}

// NewUpdateCartItemHandler creates a new update cart item handler
func NewUpdateCartItemHandler(uow domain.UnitOfWork, carts domain.CartRepository, ledger domain.LedgerRepository) *UpdateCartItemHandler {
	return &UpdateCartItemHandler{uow: uow, carts: carts, ledger: ledger}
}

// Handle executes the update cart item command
func (h *UpdateCartItemHandler) Handle(ctx context.Context, cmd UpdateCartItemCommand) error {
	if err := requireUser(cmd.UserID); err != nil {
		return err
	}
	if cmd.ProductID == 0 {
		return domain.Validation("product_id is required")
	}
	if err := requireQuantity(cmd.Quantity); err != nil {
		return err
	}

	return h.uow.Do(ctx, func(tx *gorm.DB) error {
		cart, err := h.carts.FindByUser(ctx, tx, cmd.UserID)
		if err != nil {
			return notFoundAs(err, "cart item")
		}

		updated, err := h.carts.SetItemQuantity(ctx, tx, cart.ID, cmd.ProductID, cmd.Quantity)
		if err != nil {
			return err
		}
		if !updated {
			return domain.NotFound("cart item")
		}

		return h.ledger.RecordEvent(ctx, tx, domain.LedgerEntry{
			ProductID: cmd.ProductID,
			Kind:      domain.EventCartUpdate,
			Meta: domain.EventMeta(cmd.UserID, map[string]interface{}{
				"cart_id":  cart.ID,
				"quantity": cmd.Quantity,
			}),
		})
	})
}
