package domain

import (
	"context"

	"gorm.io/gorm"
)

// Every repository method takes the caller's transaction. A nil tx means
// "use the pool", which is only correct for single-statement reads.

// UnitOfWork scopes one transaction. fn's error rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LedgerRepository owns counter movement and the product event log
type LedgerRepository interface {
	RecordEvent(ctx context.Context, tx *gorm.DB, entry LedgerEntry) error
	Reconcile(ctx context.Context, tx *gorm.DB) (*ReconcileReport, error)
}

// ProductRepository is the read side of the catalog the funnel depends on
type ProductRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*Product, error)
}

type WishlistRepository interface {
	// Insert adds the pair if absent and reports whether a row was created
	Insert(ctx context.Context, tx *gorm.DB, userID, productID uint) (bool, error)
	// Delete removes the pair and reports whether a row existed
	Delete(ctx context.Context, tx *gorm.DB, userID, productID uint) (bool, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, limit, offset int) ([]WishlistItem, error)
}

type CartRepository interface {
	EnsureCart(ctx context.Context, tx *gorm.DB, userID uint) (*Cart, error)
	// FindByUser returns ErrNotFound when the user never had a cart
	FindByUser(ctx context.Context, tx *gorm.DB, userID uint) (*Cart, error)
	// UpsertItem adds quantity to the line, creating it if needed, and returns the stored line
	UpsertItem(ctx context.Context, tx *gorm.DB, cartID, productID uint, quantity int) (*CartItem, error)
	SetItemQuantity(ctx context.Context, tx *gorm.DB, cartID, productID uint, quantity int) (bool, error)
	DeleteItem(ctx context.Context, tx *gorm.DB, cartID, productID uint) (bool, error)
	// Lines joins items with live product data; lock takes row locks on the items
	Lines(ctx context.Context, tx *gorm.DB, cartID uint, lock bool) ([]CartLine, error)
	DeleteItems(ctx context.Context, tx *gorm.DB, cartID uint, itemIDs []uint) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *Order) error
	CreateItem(ctx context.Context, tx *gorm.DB, item *OrderItem) error
	FindByUser(ctx context.Context, tx *gorm.DB, userID uint, limit, offset int) ([]Order, error)
	// FindForUser loads an order with its items; orders of other users are ErrNotFound
	FindForUser(ctx context.Context, tx *gorm.DB, orderID, userID uint) (*Order, error)
	FindAll(ctx context.Context, tx *gorm.DB, limit, offset int) ([]Order, error)
}
