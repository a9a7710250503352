package repository

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// EnsureCart converges concurrent first calls for a user onto one cart row
func (r *GormCartRepository) EnsureCart(ctx context.Context, tx *gorm.DB, userID uint) (cart *domain.Cart, err error) {
	ctx, span := startSpan(ctx, "EnsureCart", attribute.Int("user.id", int(userID)))
	defer func() { endSpan(span, err) }()

	db := conn(ctx, r.db, tx)
	c := domain.Cart{UserID: userID}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&c).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if c.ID != 0 {
		return &c, nil
	}

	// lost the race (or the cart already existed): read the winner
	var existing domain.Cart
	if err = db.Where("user_id = ?", userID).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", translate(err))
	}
	return &existing, nil
}

func (r *GormCartRepository) FindByUser(ctx context.Context, tx *gorm.DB, userID uint) (cart *domain.Cart, err error) {
	ctx, span := startSpan(ctx, "FindCartByUser", attribute.Int("user.id", int(userID)))
	defer func() { endSpan(span, err) }()

	var c domain.Cart
	if err = conn(ctx, r.db, tx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// UpsertItem adds quantity to an existing line in the same statement that would create it,
// so two concurrent adds of the same product always sum.
func (r *GormCartRepository) UpsertItem(ctx context.Context, tx *gorm.DB, cartID, productID uint, quantity int) (item *domain.CartItem, err error) {
	ctx, span := startSpan(ctx, "UpsertCartItem",
		attribute.Int("cart.id", int(cartID)),
		attribute.Int("product.id", int(productID)),
		attribute.Int("cart.quantity_delta", quantity),
	)
	defer func() { endSpan(span, err) }()

	ci := domain.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err = conn(ctx, r.db, tx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
					"updated_at": gorm.Expr("EXCLUDED.updated_at"),
				}),
			},
			clause.Returning{},
		).
		Create(&ci).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart item: %w", translate(err))
	}
	return &ci, nil
}

func (r *GormCartRepository) SetItemQuantity(ctx context.Context, tx *gorm.DB, cartID, productID uint, quantity int) (updated bool, err error) {
	ctx, span := startSpan(ctx, "SetCartItemQuantity",
		attribute.Int("cart.id", int(cartID)),
		attribute.Int("product.id", int(productID)),
		attribute.Int("cart.quantity", quantity),
	)
	defer func() { endSpan(span, err) }()

	res := conn(ctx, r.db, tx).
		Model(&domain.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormCartRepository) DeleteItem(ctx context.Context, tx *gorm.DB, cartID, productID uint) (deleted bool, err error) {
	ctx, span := startSpan(ctx, "DeleteCartItem",
		attribute.Int("cart.id", int(cartID)),
		attribute.Int("product.id", int(productID)),
	)
	defer func() { endSpan(span, err) }()

	res := conn(ctx, r.db, tx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormCartRepository) Lines(ctx context.Context, tx *gorm.DB, cartID uint, lock bool) (lines []domain.CartLine, err error) {
	ctx, span := startSpan(ctx, "CartLines",
		attribute.Int("cart.id", int(cartID)),
		attribute.Bool("cart.lock", lock),
	)
	defer func() { endSpan(span, err) }()

	q := conn(ctx, r.db, tx).
		Table("cart_items AS ci").
		Select("ci.id AS item_id, ci.product_id, p.title, p.main_image_url, p.price AS unit_price, ci.quantity").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.id")
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "ci"}})
	}

	lines = []domain.CartLine{}
	if err = q.Scan(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to read cart lines: %w", err)
	}

	span.SetAttributes(attribute.Int("cart.lines", len(lines)))
	return lines, nil
}

// DeleteItems removes exactly the given lines, leaving anything added since they were read
func (r *GormCartRepository) DeleteItems(ctx context.Context, tx *gorm.DB, cartID uint, itemIDs []uint) (deleted int64, err error) {
	ctx, span := startSpan(ctx, "DeleteCartItems",
		attribute.Int("cart.id", int(cartID)),
		attribute.Int("cart.items", len(itemIDs)),
	)
	defer func() { endSpan(span, err) }()

	if len(itemIDs) == 0 {
		return 0, nil
	}
	res := conn(ctx, r.db, tx).
		Where("cart_id = ? AND id IN ?", cartID, itemIDs).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to drain cart: %w", res.Error)
	}
	return res.RowsAffected, nil
}
