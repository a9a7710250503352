package command

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// ReconcileCountersHandler recomputes derived counters from their source rows
type ReconcileCountersHandler struct {
	uow    domain.UnitOfWork
	ledger domain.LedgerRepository
}

func NewReconcileCountersHandler(uow domain.UnitOfWork, ledger domain.LedgerRepository) *ReconcileCountersHandler {
	return &ReconcileCountersHandler{uow: uow, ledger: ledger}
}

func (h *ReconcileCountersHandler) Handle(ctx context.Context) (*domain.ReconcileReport, error) {
	var report *domain.ReconcileReport
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		report, err = h.ledger.Reconcile(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
