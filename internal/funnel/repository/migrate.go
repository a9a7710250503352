package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/pkg/logger"
)

// Migrate creates or updates the funnel tables. Products are included so the
// service can run standalone; in a full deployment the catalog owns them.
func Migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&domain.Product{},
		&domain.ProductEvent{},
		&domain.WishlistEntry{},
		&domain.Cart{},
		&domain.CartItem{},
		&domain.Order{},
		&domain.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate funnel schema: %w", err)
	}

	// counters may only be moved through GREATEST(..., 0); the checks catch anything else
	for _, stmt := range []string{
		`DO $$ BEGIN
			ALTER TABLE products ADD CONSTRAINT products_counters_non_negative
				CHECK (views >= 0 AND wishlist_count >= 0 AND sold_count >= 0);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	} {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add constraint: %w", err)
		}
	}

	logger.Info(ctx).Msg("Database migrations completed")
	return nil
}
