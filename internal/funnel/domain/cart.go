package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is created lazily, one per user, and is emptied but never deleted by the funnel
type Cart struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is one line of a cart; (cart, product) is unique
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CartID    uint      `json:"cart_id" gorm:"not null;uniqueIndex:cart_items_cart_product_key;index"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:cart_items_cart_product_key"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1;check:cart_items_quantity_positive,quantity > 0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cart    *Cart    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Product *Product `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine is a cart item joined with the product's live title, price and image
type CartLine struct {
	ItemID       uint            `json:"-"`
	ProductID    uint            `json:"product_id"`
	Title        string          `json:"title"`
	MainImageURL string          `json:"main_image_url,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
}

// LineTotal is unit price times quantity
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is the cart as rendered to its owner. Totals use current prices.
type CartSnapshot struct {
	CartID uint            `json:"cart_id,omitempty"`
	Items  []CartLine      `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// NewCartSnapshot totals lines; a nil slice renders as an empty cart
func NewCartSnapshot(cartID uint, lines []CartLine) CartSnapshot {
	if lines == nil {
		lines = []CartLine{}
	}
	return CartSnapshot{CartID: cartID, Items: lines, Total: SumLines(lines)}
}

// SumLines is Σ unit price × quantity
func SumLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}
