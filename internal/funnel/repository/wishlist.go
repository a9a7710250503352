package repository

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

type GormWishlistRepository struct {
	db *gorm.DB
}

func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// Insert relies on the (user_id, product_id) unique index: a concurrent or repeated
// insert of the same pair affects zero rows instead of failing.
func (r *GormWishlistRepository) Insert(ctx context.Context, tx *gorm.DB, userID, productID uint) (inserted bool, err error) {
	ctx, span := startSpan(ctx, "InsertWishlist",
		attribute.Int("user.id", int(userID)),
		attribute.Int("product.id", int(productID)),
	)
	defer func() { endSpan(span, err) }()

	entry := domain.WishlistEntry{UserID: userID, ProductID: productID}
	res := conn(ctx, r.db, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&entry)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert wishlist entry: %w", translate(res.Error))
	}

	span.SetAttributes(attribute.Bool("wishlist.inserted", res.RowsAffected == 1))
	return res.RowsAffected == 1, nil
}

func (r *GormWishlistRepository) Delete(ctx context.Context, tx *gorm.DB, userID, productID uint) (deleted bool, err error) {
	ctx, span := startSpan(ctx, "DeleteWishlist",
		attribute.Int("user.id", int(userID)),
		attribute.Int("product.id", int(productID)),
	)
	defer func() { endSpan(span, err) }()

	res := conn(ctx, r.db, tx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.WishlistEntry{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete wishlist entry: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormWishlistRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, limit, offset int) (items []domain.WishlistItem, err error) {
	ctx, span := startSpan(ctx, "ListWishlist", attribute.Int("user.id", int(userID)))
	defer func() { endSpan(span, err) }()

	limit, offset = pageArgs(limit, offset)
	items = []domain.WishlistItem{}
	err = conn(ctx, r.db, tx).
		Table("wishlists AS w").
		Select("p.id AS product_id, p.title, p.slug, p.price, p.main_image_url, w.created_at AS favorited_at").
		Joins("JOIN products p ON p.id = w.product_id").
		Where("w.user_id = ?", userID).
		Order("w.created_at DESC, w.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}

	span.SetAttributes(attribute.Int("wishlist.count", len(items)))
	return items, nil
}
