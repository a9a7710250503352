package repository

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order header only; lines go through CreateItem
func (r *GormOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *domain.Order) (err error) {
	ctx, span := startSpan(ctx, "CreateOrder",
		attribute.Int("user.id", int(order.UserID)),
		attribute.String("order.total", order.Total.String()),
	)
	defer func() { endSpan(span, err) }()

	if err = conn(ctx, r.db, tx).Omit(clause.Associations).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", translate(err))
	}

	span.SetAttributes(attribute.Int("order.id", int(order.ID)))
	return nil
}

func (r *GormOrderRepository) CreateItem(ctx context.Context, tx *gorm.DB, item *domain.OrderItem) (err error) {
	ctx, span := startSpan(ctx, "CreateOrderItem",
		attribute.Int("order.id", int(item.OrderID)),
		attribute.Int("product.id", int(item.ProductID)),
		attribute.Int("order_item.quantity", item.Quantity),
	)
	defer func() { endSpan(span, err) }()

	if err = conn(ctx, r.db, tx).Omit(clause.Associations).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create order item: %w", translate(err))
	}
	return nil
}

func (r *GormOrderRepository) FindByUser(ctx context.Context, tx *gorm.DB, userID uint, limit, offset int) (orders []domain.Order, err error) {
	ctx, span := startSpan(ctx, "FindOrdersByUser", attribute.Int("user.id", int(userID)))
	defer func() { endSpan(span, err) }()

	limit, offset = pageArgs(limit, offset)
	orders = []domain.Order{}
	err = conn(ctx, r.db, tx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	span.SetAttributes(attribute.Int("order.count", len(orders)))
	return orders, nil
}

func (r *GormOrderRepository) FindForUser(ctx context.Context, tx *gorm.DB, orderID, userID uint) (order *domain.Order, err error) {
	ctx, span := startSpan(ctx, "FindOrderForUser",
		attribute.Int("order.id", int(orderID)),
		attribute.Int("user.id", int(userID)),
	)
	defer func() { endSpan(span, err) }()

	var o domain.Order
	err = conn(ctx, r.db, tx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *GormOrderRepository) FindAll(ctx context.Context, tx *gorm.DB, limit, offset int) (orders []domain.Order, err error) {
	ctx, span := startSpan(ctx, "FindAllOrders")
	defer func() { endSpan(span, err) }()

	limit, offset = pageArgs(limit, offset)
	orders = []domain.Order{}
	err = conn(ctx, r.db, tx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
