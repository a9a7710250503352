package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order statuses. Only the transition to pending happens in this service.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// Order is an immutable checkout result
type Order struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	Reference string            `json:"reference" gorm:"size:32;uniqueIndex;not null"`
	UserID    uint              `json:"user_id" gorm:"not null;index"`
	Total     decimal.Decimal   `json:"total" gorm:"type:numeric(12,2);not null;default:0"`
	Status    string            `json:"status" gorm:"size:30;not null;default:'pending'"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"index"`
	UpdatedAt time.Time         `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem freezes price and quantity at checkout time
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	ProductID uint            `json:"product_id" gorm:"not null;index"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Total     decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`

	Product *Product `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem freezes a cart line into an order line
func NewOrderItem(orderID uint, line CartLine) OrderItem {
	return OrderItem{
		OrderID:   orderID,
		ProductID: line.ProductID,
		UnitPrice: line.UnitPrice,
		Quantity:  line.Quantity,
		Total:     line.LineTotal(),
	}
}
