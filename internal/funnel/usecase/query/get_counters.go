package query

import (
	"context"
	"errors"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// GetCountersQuery represents the query for a product's funnel counters
type GetCountersQuery struct {
	ProductID uint
}

// GetCountersHandler handles get counters query
type GetCountersHandler struct {
	products domain.ProductRepository
}

// NewGetCountersHandler creates a new get counters handler
func NewGetCountersHandler(products domain.ProductRepository) *GetCountersHandler {
	return &GetCountersHandler{products: products}
}

func (h *GetCountersHandler) Handle(ctx context.Context, query GetCountersQuery) (*domain.ProductCounters, error) {
	if query.ProductID == 0 {
		return nil, domain.Validation("invalid product id")
	}

	product, err := h.products.FindByID(ctx, nil, query.ProductID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("product")
	}
	if err != nil {
		return nil, err
	}

	counters := product.Counters()
	return &counters, nil
}
