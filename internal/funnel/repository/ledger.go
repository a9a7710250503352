package repository

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/pkg/logger"
)

// GormLedgerRepository is the only writer of products.views, wishlist_count and sold_count
type GormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// RecordEvent moves the counter implied by entry.Kind and appends one product event.
// Both statements run in tx; with a nil tx the ledger opens its own transaction.
func (r *GormLedgerRepository) RecordEvent(ctx context.Context, tx *gorm.DB, entry domain.LedgerEntry) (err error) {
	ctx, span := startSpan(ctx, "RecordEvent",
		attribute.Int("product.id", int(entry.ProductID)),
		attribute.String("event.kind", string(entry.Kind)),
		attribute.Int64("event.delta", entry.Delta),
	)
	defer func() { endSpan(span, err) }()

	if !entry.Kind.Valid() {
		return fmt.Errorf("unknown event kind %q", entry.Kind)
	}

	if tx == nil {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return r.record(ctx, tx, entry)
		})
	}
	return r.record(ctx, tx, entry)
}

func (r *GormLedgerRepository) record(ctx context.Context, tx *gorm.DB, entry domain.LedgerEntry) error {
	db := tx.WithContext(ctx)

	if column := entry.Kind.CounterColumn(); column != "" && entry.Delta != 0 {
		// column comes from a fixed switch, never from input
		res := db.Model(&domain.Product{}).
			Where("id = ?", entry.ProductID).
			UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", entry.Delta))
		if res.Error != nil {
			return fmt.Errorf("failed to move %s: %w", column, res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("product")
		}
	} else {
		var count int64
		if err := db.Model(&domain.Product{}).Where("id = ?", entry.ProductID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check product: %w", err)
		}
		if count == 0 {
			return domain.NotFound("product")
		}
	}

	meta := datatypes.JSONMap(entry.Meta)
	if meta == nil {
		meta = datatypes.JSONMap{}
	}
	event := domain.ProductEvent{
		ProductID: entry.ProductID,
		EventType: entry.Kind,
		Meta:      meta,
	}
	if err := db.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to append product event: %w", translate(err))
	}
	return nil
}

const reconcileWishlistSQL = `
UPDATE products AS p
SET wishlist_count = agg.cnt
FROM (
	SELECT pr.id, COUNT(w.id) AS cnt
	FROM products pr
	LEFT JOIN wishlists w ON w.product_id = pr.id
	GROUP BY pr.id
) AS agg
WHERE p.id = agg.id AND p.wishlist_count <> agg.cnt`

const reconcileSoldSQL = `
UPDATE products AS p
SET sold_count = agg.cnt
FROM (
	SELECT pr.id, COALESCE(SUM(oi.quantity), 0) AS cnt
	FROM products pr
	LEFT JOIN order_items oi ON oi.product_id = pr.id
	GROUP BY pr.id
) AS agg
WHERE p.id = agg.id AND p.sold_count <> agg.cnt`

// Reconcile recomputes wishlist_count and sold_count from their source rows.
// Views have no source rows beyond the event log and are left alone.
func (r *GormLedgerRepository) Reconcile(ctx context.Context, tx *gorm.DB) (report *domain.ReconcileReport, err error) {
	ctx, span := startSpan(ctx, "Reconcile")
	defer func() { endSpan(span, err) }()

	run := func(tx *gorm.DB) error {
		db := tx.WithContext(ctx)
		wish := db.Exec(reconcileWishlistSQL)
		if wish.Error != nil {
			return fmt.Errorf("failed to reconcile wishlist counts: %w", wish.Error)
		}
		sold := db.Exec(reconcileSoldSQL)
		if sold.Error != nil {
			return fmt.Errorf("failed to reconcile sold counts: %w", sold.Error)
		}
		report = &domain.ReconcileReport{
			WishlistCountsFixed: wish.RowsAffected,
			SoldCountsFixed:     sold.RowsAffected,
			FinishedAt:          time.Now().UTC(),
		}
		return nil
	}

	if tx == nil {
		err = r.db.WithContext(ctx).Transaction(run)
	} else {
		err = run(tx)
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("reconcile.wishlist_fixed", report.WishlistCountsFixed),
		attribute.Int64("reconcile.sold_fixed", report.SoldCountsFixed),
	)
	logger.Info(ctx).
		Int64("wishlist_fixed", report.WishlistCountsFixed).
		Int64("sold_fixed", report.SoldCountsFixed).
		Msg("Counters reconciled")
	return report, nil
}
