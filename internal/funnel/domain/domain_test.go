package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCounterColumn(t *testing.T) {
	cases := map[EventKind]string{
		EventView:           "views",
		EventWishlistAdd:    "wishlist_count",
		EventWishlistRemove: "wishlist_count",
		EventOrderItem:      "sold_count",
		EventCartAdd:        "",
		EventCartUpdate:     "",
		EventCartRemove:     "",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.CounterColumn(), kind)
		assert.True(t, kind.Valid(), kind)
	}
	assert.False(t, EventKind("refund").Valid())
}

func TestCartSnapshotTotalsLivePrices(t *testing.T) {
	snap := NewCartSnapshot(3, []CartLine{
		{ProductID: 1, UnitPrice: decimal.NewFromInt(10), Quantity: 2},
		{ProductID: 2, UnitPrice: decimal.RequireFromString("25.50"), Quantity: 1},
	})
	assert.True(t, snap.Total.Equal(decimal.RequireFromString("45.50")), snap.Total.String())
}

func TestEmptySnapshotRendersEmptyItems(t *testing.T) {
	snap := NewCartSnapshot(0, nil)
	assert.NotNil(t, snap.Items)
	assert.Len(t, snap.Items, 0)
	assert.True(t, snap.Total.IsZero())
}

func TestNewOrderItemFreezesLine(t *testing.T) {
	item := NewOrderItem(9, CartLine{ProductID: 4, UnitPrice: decimal.NewFromInt(12), Quantity: 3})
	assert.Equal(t, uint(9), item.OrderID)
	assert.True(t, item.Total.Equal(decimal.NewFromInt(36)))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("order")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrap: %w", ErrNotFound)))
	assert.Equal(t, KindEmptyCart, KindOf(EmptyCart()))
	assert.Equal(t, KindValidation, KindOf(Validation("quantity must be greater than 0")))
	assert.Equal(t, KindConflict, KindOf(ErrConflict))
	assert.Equal(t, KindInternal, KindOf(errors.New("connection reset")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestPublicMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "internal error", PublicMessage(errors.New("pq: relation does not exist")))
	assert.Equal(t, "order not found", PublicMessage(NotFound("order")))
	assert.Equal(t, "resource not found", PublicMessage(fmt.Errorf("x: %w", ErrNotFound)))
}

func TestEventMetaMergesExtra(t *testing.T) {
	meta := EventMeta(5, map[string]interface{}{"quantity": 2})
	assert.Equal(t, uint(5), meta["user_id"])
	assert.Equal(t, 2, meta["quantity"])
	assert.NotContains(t, EventMeta(0, nil), "user_id")
}
