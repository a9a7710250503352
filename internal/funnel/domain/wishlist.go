package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistEntry is a (user, product) favorite. The pair is unique.
type WishlistEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:wishlists_user_product_key;index"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:wishlists_user_product_key;index"`
	CreatedAt time.Time `json:"created_at"`

	Product *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (WishlistEntry) TableName() string {
	return "wishlists"
}

// WishlistItem is a favorited product as listed to its owner
type WishlistItem struct {
	ProductID    uint            `json:"product_id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Price        decimal.Decimal `json:"price"`
	MainImageURL string          `json:"main_image_url,omitempty"`
	FavoritedAt  time.Time       `json:"favorited_at"`
}
