package command

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/pkg/logger"
)

// RecordViewCommand records one product page impression. Anonymous viewers
// have UserID 0 and may carry a ViewerKey.
type RecordViewCommand struct {
	ProductID uint
	UserID    uint
	ViewerKey string
}

// RecordViewHandler handles record view command
type RecordViewHandler struct {
	uow       domain.UnitOfWork
	ledger    domain.LedgerRepository
	dedup     domain.ViewDeduplicator
	publisher domain.EventPublisher
	async     bool
}

// NewRecordViewHandler creates a new record view handler. dedup and publisher
// may be nil; with async set and a publisher present, views are handed to the
// counter worker instead of being applied inline.
func NewRecordViewHandler(uow domain.UnitOfWork, ledger domain.LedgerRepository, dedup domain.ViewDeduplicator, publisher domain.EventPublisher, async bool) *RecordViewHandler {
	return &RecordViewHandler{uow: uow, ledger: ledger, dedup: dedup, publisher: publisher, async: async}
}

// Handle executes the record view command. A view of a product that no longer
// exists is not an error. counted reports whether the view was accepted.
func (h *RecordViewHandler) Handle(ctx context.Context, cmd RecordViewCommand) (counted bool, err error) {
	if cmd.ProductID == 0 {
		return false, domain.Validation("product_id is required")
	}
	view := domain.ProductView{ProductID: cmd.ProductID, UserID: cmd.UserID, ViewerKey: cmd.ViewerKey}

	if h.dedup != nil {
		first, err := h.dedup.FirstView(ctx, view)
		if err != nil {
			// count it anyway; a cache outage must not drop views
			logger.Warn(ctx).Err(err).Uint("product_id", view.ProductID).Msg("View dedup unavailable")
		} else if !first {
			return false, nil
		}
	}

	if h.async && h.publisher != nil {
		err = h.publisher.PublishProductViewed(ctx, view)
		if err == nil {
			return true, nil
		}
		logger.Warn(ctx).Err(err).Uint("product_id", view.ProductID).Msg("Falling back to inline view recording")
	}

	return h.Apply(ctx, view)
}

// Apply moves the view counter and logs the event in one unit of work
func (h *RecordViewHandler) Apply(ctx context.Context, view domain.ProductView) (bool, error) {
	extra := map[string]interface{}{}
	if view.ViewerKey != "" {
		extra["viewer_key"] = view.ViewerKey
	}

	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		return h.ledger.RecordEvent(ctx, tx, domain.LedgerEntry{
			ProductID: view.ProductID,
			Kind:      domain.EventView,
			Delta:     1,
			Meta:      domain.EventMeta(view.UserID, extra),
		})
	})
	if domain.KindOf(err) == domain.KindNotFound {
		logger.Debug(ctx).Uint("product_id", view.ProductID).Msg("View on missing product ignored")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
