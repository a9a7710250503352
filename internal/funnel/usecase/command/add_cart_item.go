package command

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// AddCartItemCommand adds Quantity of a product to the user's cart
type AddCartItemCommand struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// AddCartItemHandler handles add cart item command
type AddCartItemHandler struct {
	uow      domain.UnitOfWork
	products domain.ProductRepository
	carts    domain.CartRepository
	ledger   domain.LedgerRepository
}

// NewAddCartItemHandler creates a new add cart item handler
func NewAddCartItemHandler(uow domain.UnitOfWork, products domain.ProductRepository, carts domain.CartRepository, ledger domain.LedgerRepository) *AddCartItemHandler {
	return &AddCartItemHandler{uow: uow, products: products, carts: carts, ledger: ledger}
}

// Handle executes the add cart item command. Quantities accumulate on an
// existing line; the returned item carries the stored total.
func (h *AddCartItemHandler) Handle(ctx context.Context, cmd AddCartItemCommand) (*domain.CartItem, error) {
	if err := requireUser(cmd.UserID); err != nil {
		return nil, err
	}
	if cmd.ProductID == 0 {
		return nil, domain.Validation("product_id is required")
	}
	if err := requireQuantity(cmd.Quantity); err != nil {
		return nil, err
	}

	var item *domain.CartItem
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		if _, err := h.products.FindByID(ctx, tx, cmd.ProductID); err != nil {
			return notFoundAs(err, "product")
		}

		cart, err := h.carts.EnsureCart(ctx, tx, cmd.UserID)
		if err != nil {
			return err
		}

		item, err = h.carts.UpsertItem(ctx, tx, cart.ID, cmd.ProductID, cmd.Quantity)
		if err != nil {
			return notFoundAs(err, "product")
		}

		return h.ledger.RecordEvent(ctx, tx, domain.LedgerEntry{
			ProductID: cmd.ProductID,
			Kind:      domain.EventCartAdd,
			Meta: domain.EventMeta(cmd.UserID, map[string]interface{}{
				"cart_id":  cart.ID,
				"quantity": cmd.Quantity,
			}),
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}
