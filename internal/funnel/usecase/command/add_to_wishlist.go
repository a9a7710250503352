package command

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// AddToWishlistCommand represents the command to favorite a product
type AddToWishlistCommand struct {
	UserID    uint
	ProductID uint
}

// AddToWishlistHandler handles add to wishlist command
type AddToWishlistHandler struct {
	uow      domain.UnitOfWork
	products domain.ProductRepository
	wishlist domain.WishlistRepository
	ledger   domain.LedgerRepository
}

// NewAddToWishlistHandler creates a new add to wishlist handler
func NewAddToWishlistHandler(uow domain.UnitOfWork, products domain.ProductRepository, wishlist domain.WishlistRepository, ledger domain.LedgerRepository) *AddToWishlistHandler {
	return &AddToWishlistHandler{uow: uow, products: products, wishlist: wishlist, ledger: ledger}
}

// Handle executes the add to wishlist command. Repeated adds succeed; added
// reports whether this call created the entry (and moved the counter).
func (h *AddToWishlistHandler) Handle(ctx context.Context, cmd AddToWishlistCommand) (added bool, err error) {
	if err := requireUser(cmd.UserID); err != nil {
		return false, err
	}
	if cmd.ProductID == 0 {
		return false, domain.Validation("product_id is required")
	}

	err = h.uow.Do(ctx, func(tx *gorm.DB) error {
		if _, err := h.products.FindByID(ctx, tx, cmd.ProductID); err != nil {
			return notFoundAs(err, "product")
		}

		inserted, err := h.wishlist.Insert(ctx, tx, cmd.UserID, cmd.ProductID)
		if err != nil {
			return notFoundAs(err, "product")
		}
		if !inserted {
			return nil
		}
		added = true

		return h.ledger.RecordEvent(ctx, tx, domain.LedgerEntry{
			ProductID: cmd.ProductID,
			Kind:      domain.EventWishlistAdd,
			Delta:     1,
			Meta:      domain.EventMeta(cmd.UserID, nil),
		})
	})
	if err != nil {
		return false, err
	}
	return added, nil
}
