package domain

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the catalog row the funnel reads prices from and keeps counters on.
// The catalog owns every column except Views, WishlistCount and SoldCount,
// which only the ledger mutates.
type Product struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Title         string          `json:"title" gorm:"size:255;not null"`
	Slug          string          `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	MainImageURL  string          `json:"main_image_url,omitempty"`
	Images        pq.StringArray  `json:"images" gorm:"type:text[];default:'{}'"`
	Views         int64           `json:"views" gorm:"not null;default:0"`
	WishlistCount int64           `json:"wishlist_count" gorm:"not null;default:0"`
	SoldCount     int64           `json:"sold_count" gorm:"not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductCounters is the read model for the ledger-owned columns
type ProductCounters struct {
	ProductID     uint  `json:"product_id"`
	Views         int64 `json:"views"`
	WishlistCount int64 `json:"wishlist_count"`
	SoldCount     int64 `json:"sold_count"`
}

func (p *Product) Counters() ProductCounters {
	return ProductCounters{
		ProductID:     p.ID,
		Views:         p.Views,
		WishlistCount: p.WishlistCount,
		SoldCount:     p.SoldCount,
	}
}
