package repository

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (product *domain.Product, err error) {
	ctx, span := startSpan(ctx, "FindProductByID", attribute.Int("product.id", int(id)))
	defer func() { endSpan(span, err) }()

	var p domain.Product
	if err = conn(ctx, r.db, tx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
