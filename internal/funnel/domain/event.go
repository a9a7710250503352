package domain

import (
	"time"

	"gorm.io/datatypes"
)

// EventKind names a product_events row type
type EventKind string

const (
	EventView           EventKind = "view"
	EventWishlistAdd    EventKind = "wishlist_add"
	EventWishlistRemove EventKind = "wishlist_remove"
	EventCartAdd        EventKind = "cart_add"
	EventCartUpdate     EventKind = "cart_update"
	EventCartRemove     EventKind = "cart_remove"
	EventOrderItem      EventKind = "order_item"
)

// CounterColumn returns the products column a kind moves, or "" for audit-only kinds
func (k EventKind) CounterColumn() string {
	switch k {
	case EventView:
		return "views"
	case EventWishlistAdd, EventWishlistRemove:
		return "wishlist_count"
	case EventOrderItem:
		return "sold_count"
	default:
		return ""
	}
}

func (k EventKind) Valid() bool {
	switch k {
	case EventView, EventWishlistAdd, EventWishlistRemove,
		EventCartAdd, EventCartUpdate, EventCartRemove, EventOrderItem:
		return true
	}
	return false
}

// ProductEvent is an append-only audit row. Never updated or deleted by the funnel.
type ProductEvent struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	ProductID uint              `json:"product_id" gorm:"not null;index"`
	EventType EventKind         `json:"event_type" gorm:"size:50;not null;index"`
	Meta      datatypes.JSONMap `json:"meta" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at"`

	Product *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (ProductEvent) TableName() string {
	return "product_events"
}

// LedgerEntry is one request to the ledger: move a counter by Delta and log it.
type LedgerEntry struct {
	ProductID uint
	Kind      EventKind
	Delta     int64
	Meta      map[string]interface{}
}

// EventMeta builds the metadata map every funnel event carries
func EventMeta(userID uint, extra map[string]interface{}) map[string]interface{} {
	meta := map[string]interface{}{}
	if userID != 0 {
		meta["user_id"] = userID
	}
	for k, v := range extra {
		meta[k] = v
	}
	return meta
}

// ReconcileReport summarises a counter repair pass
type ReconcileReport struct {
	WishlistCountsFixed int64     `json:"wishlist_counts_fixed"`
	SoldCountsFixed     int64     `json:"sold_counts_fixed"`
	FinishedAt          time.Time `json:"finished_at"`
}
