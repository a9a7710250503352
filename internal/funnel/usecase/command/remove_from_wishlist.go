package command

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// RemoveFromWishlistCommand represents the command to unfavorite a product
type RemoveFromWishlistCommand struct {
	UserID    uint
	ProductID uint
}

// RemoveFromWishlistHandler handles remove from wishlist command
type RemoveFromWishlistHandler struct {
	uow      domain.UnitOfWork
	wishlist domain.WishlistRepository
	ledger   domain.LedgerRepository
}

// NewRemoveFromWishlistHandler creates a new remove from wishlist handler
func NewRemoveFromWishlistHandler(uow domain.UnitOfWork, wishlist domain.WishlistRepository, ledger domain.LedgerRepository) *RemoveFromWishlistHandler {
	return &RemoveFromWishlistHandler{uow: uow, wishlist: wishlist, ledger: ledger}
}

// Handle executes the remove from wishlist command
func (h *RemoveFromWishlistHandler) Handle(ctx context.Context, cmd RemoveFromWishlistCommand) error {
	if err := requireUser(cmd.UserID); err != nil {
		return err
	}
	if cmd.ProductID == 0 {
		return domain.Validation("product_id is required")
	}

	return h.uow.Do(ctx, func(tx *gorm.DB) error {
		deleted, err := h.wishlist.Delete(ctx, tx, cmd.UserID, cmd.ProductID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NotFound("wishlist entry")
		}

		return h.ledger.RecordEvent(ctx, tx, domain.LedgerEntry{
			ProductID: cmd.ProductID,
			Kind:      domain.EventWishlistRemove,
			Delta:     -1,
			Meta:      domain.EventMeta(cmd.UserID, nil),
		})
	})
}
