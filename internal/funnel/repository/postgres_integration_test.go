package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/internal/funnel/repository"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/command"
)

// These tests need a disposable database, e.g.
// TEST_POSTGRES_DSN="host=localhost user=postgres password=postgres dbname=funnel_test sslmode=disable"
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, repository.Migrate(ctx, db))
	require.NoError(t, db.Exec(`TRUNCATE product_events, wishlists, cart_items, carts, order_items, orders, products RESTART IDENTITY CASCADE`).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type stack struct {
	db       *gorm.DB
	uow      domain.UnitOfWork
	ledger   domain.LedgerRepository
	products domain.ProductRepository
	wishlist domain.WishlistRepository
	carts    domain.CartRepository
	orders   domain.OrderRepository
}

func newStack(db *gorm.DB) stack {
	return stack{
		db:       db,
		uow:      repository.NewGormUnitOfWork(db),
		ledger:   repository.NewGormLedgerRepository(db),
		products: repository.NewGormProductRepository(db),
		wishlist: repository.NewGormWishlistRepository(db),
		carts:    repository.NewGormCartRepository(db),
		orders:   repository.NewGormOrderRepository(db),
	}
}

func seedProduct(t *testing.T, db *gorm.DB, title, price string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Title: title,
		Slug:  fmt.Sprintf("%s-%d", title, len(title)),
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func reload(t *testing.T, db *gorm.DB, id uint) domain.Product {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.First(&p, id).Error)
	return p
}

func countEvents(t *testing.T, db *gorm.DB, productID uint, kind domain.EventKind) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.ProductEvent{}).
		Where("product_id = ? AND event_type = ?", productID, kind).
		Count(&n).Error)
	return n
}

func TestPostgresConcurrentWishlistAdds(t *testing.T) {
	db := openTestDB(t)
	s := newStack(db)
	p := seedProduct(t, db, "lamp", "20.00")
	add := command.NewAddToWishlistHandler(s.uow, s.products, s.wishlist, s.ledger)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := add.Handle(context.Background(), command.AddToWishlistCommand{UserID: 1, ProductID: p.ID})
			assert.NoError(t, err)
			if added {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, int64(1), reload(t, db, p.ID).WishlistCount)
	assert.Equal(t, int64(1), countEvents(t, db, p.ID, domain.EventWishlistAdd))
}

func TestPostgresWishlistCountMatchesRows(t *testing.T) {
	db := openTestDB(t)
	s := newStack(db)
	p := seedProduct(t, db, "mug", "5.00")
	ctx := context.Background()
	add := command.NewAddToWishlistHandler(s.uow, s.products, s.wishlist, s.ledger)
	remove := command.NewRemoveFromWishlistHandler(s.uow, s.wishlist, s.ledger)

	for user := uint(1); user <= 5; user++ {
		_, err := add.Handle(ctx, command.AddToWishlistCommand{UserID: user, ProductID: p.ID})
		require.NoError(t, err)
	}
	require.NoError(t, remove.Handle(ctx, command.RemoveFromWishlistCommand{UserID: 2, ProductID: p.ID}))
	require.NoError(t, remove.Handle(ctx, command.RemoveFromWishlistCommand{UserID: 4, ProductID: p.ID}))

	err := remove.Handle(ctx, command.RemoveFromWishlistCommand{UserID: 4, ProductID: p.ID})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	var rows int64
	require.NoError(t, db.Model(&domain.WishlistEntry{}).Where("product_id = ?", p.ID).Count(&rows).Error)
	assert.Equal(t, int64(3), rows)
	assert.Equal(t, rows, reload(t, db, p.ID).WishlistCount)

	items, err := s.wishlist.ListByUser(ctx, nil, 5, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "mug", items[0].Title)
}

func TestPostgresCounterNeverNegative(t *testing.T) {
	db := openTestDB(t)
	s := newStack(db)
	p := seedProduct(t, db, "vase", "9.00")

	require.NoError(t, s.ledger.RecordEvent(context.Background(), nil, domain.LedgerEntry{
		ProductID: p.ID,
		Kind:      domain.EventWishlistRemove,
		Delta:     -1,
	}))
	assert.Equal(t, int64(0), reload(t, db, p.ID).WishlistCount)
	assert.Equal(t, int64(1), countEvents(t, db, p.ID, domain.EventWishlistRemove))

	err := s.ledger.RecordEvent(context.Background(), nil, domain.LedgerEntry{
		ProductID: 99999,
		Kind:      domain.EventView,
		Delta:     1,
	})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestPostgresConcurrentCartAdds(t *testing.T) {
	db := openTestDB(t)
	s := newStack(db)
	p := seedProduct(t, db, "pen", "1.50")
	add := command.NewAddCartItemHandler(s.uow, s.products, s.carts, s.ledger)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := add.Handle(context.Background(), command.AddCartItemCommand{UserID: 3, ProductID: p.ID, Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart, err := s.carts.FindByUser(context.Background(), nil, 3)
	require.NoError(t, err)
	lines, err := s.carts.Lines(context.Background(), nil, cart.ID, false)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 10, lines[0].Quantity)
	assert.Equal(t, int64(10), countEvents(t, db, p.ID, domain.EventCartAdd))
}

func TestPostgresCheckoutFreezesPrices(t *testing.T) {
	db := openTestDB(t)
	s := newStack(db)
	ctx := context.Background()
	a := seedProduct(t, db, "a", "10.00")
	b := seedProduct(t, db, "bb", "25.00")
	add := command.NewAddCartItemHandler(s.uow, s.products, s.carts, s.ledger)
	_, err := add.Handle(ctx, command.AddCartItemCommand{UserID: 7, ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = add.Handle(ctx, command.AddCartItemCommand{UserID: 7, ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)

	checkout := command.NewCheckoutHandler(s.uow, s.carts, s.orders, s.ledger, nil)
	order, err := checkout.Handle(ctx, command.CheckoutCommand{UserID: 7})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(45)))

	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", a.ID).Update("price", "99.00").Error)

	stored, err := s.orders.FindForUser(ctx, nil, order.ID, 7)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(45)))

	assert.Equal(t, int64(2), reload(t, db, a.ID).SoldCount)
	assert.Equal(t, int64(1), reload(t, db, b.ID).SoldCount)

	cart, err := s.carts.FindByUser(ctx, nil, 7)
	require.NoError(t, err)
	lines, err := s.carts.Lines(ctx, nil, cart.ID, false)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = checkout.Handle(ctx, command.CheckoutCommand{UserID: 7})
	assert.Equal(t, domain.KindEmptyCart, domain.KindOf(err))
}

// failingLedger fails the first sale it is asked to record
type failingLedger struct {
	domain.LedgerRepository
}

func (l failingLedger) RecordEvent(ctx context.Context, tx *gorm.DB, entry domain.LedgerEntry) error {
	if entry.Kind == domain.EventOrderItem {
		return errors.New("ledger unavailable")
	}
	return l.LedgerRepository.RecordEvent(ctx, tx, entry)
}

func TestPostgresCheckoutRollsBack(t *testing.T) {
	db := openTestDB(t)
	s := newStack(db)
	ctx := context.Background()
	p := seedProduct(t, db, "cup", "4.00")
	_, err := command.NewAddCartItemHandler(s.uow, s.products, s.carts, s.ledger).
		Handle(ctx, command.AddCartItemCommand{UserID: 8, ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	checkout := command.NewCheckoutHandler(s.uow, s.carts, s.orders, failingLedger{s.ledger}, nil)
	_, err = checkout.Handle(ctx, command.CheckoutCommand{UserID: 8})
	require.Error(t, err)

	var orders int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	cart, err := s.carts.FindByUser(ctx, nil, 8)
	require.NoError(t, err)
	lines, err := s.carts.Lines(ctx, nil, cart.ID, false)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, int64(0), reload(t, db, p.ID).SoldCount)
}

// flakyOrders fails the nth order line it is asked to insert
type flakyOrders struct {
	domain.OrderRepository
	failAt int
	calls  *int
}

func (o flakyOrders) CreateItem(ctx context.Context, tx *gorm.DB, item *domain.OrderItem) error {
	*o.calls++
	if *o.calls == o.failAt {
		return errors.New("order_items insert failed")
	}
	return o.OrderRepository.CreateItem(ctx, tx, item)
}

func TestPostgresCheckoutRollsBackPartwayThroughLines(t *testing.T) {
	db := openTestDB(t)
	s := newStack(db)
	ctx := context.Background()
	a := seedProduct(t, db, "fork", "3.00")
	b := seedProduct(t, db, "knife", "6.00")
	add := command.NewAddCartItemHandler(s.uow, s.products, s.carts, s.ledger)
	_, err := add.Handle(ctx, command.AddCartItemCommand{UserID: 9, ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = add.Handle(ctx, command.AddCartItemCommand{UserID: 9, ProductID: b.ID, Quantity: 4})
	require.NoError(t, err)

	calls := 0
	orders := flakyOrders{OrderRepository: s.orders, failAt: 2, calls: &calls}
	_, err = command.NewCheckoutHandler(s.uow, s.carts, orders, s.ledger, nil).
		Handle(ctx, command.CheckoutCommand{UserID: 9})
	require.Error(t, err)
	assert.Equal(t, 2, calls)

	var n int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&domain.OrderItem{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Equal(t, int64(0), reload(t, db, a.ID).SoldCount)
	assert.Equal(t, int64(0), reload(t, db, b.ID).SoldCount)
	assert.Zero(t, countEvents(t, db, a.ID, domain.EventOrderItem))

	cart, err := s.carts.FindByUser(ctx, nil, 9)
	require.NoError(t, err)
	lines, err := s.carts.Lines(ctx, nil, cart.ID, false)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestPostgresReconcile(t *testing.T) {
	db := openTestDB(t)
	s := newStack(db)
	ctx := context.Background()
	p := seedProduct(t, db, "rug", "30.00")
	_, err := command.NewAddToWishlistHandler(s.uow, s.products, s.wishlist, s.ledger).
		Handle(ctx, command.AddToWishlistCommand{UserID: 1, ProductID: p.ID})
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"wishlist_count": 7, "sold_count": 4}).Error)

	report, err := command.NewReconcileCountersHandler(s.uow, s.ledger).Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.WishlistCountsFixed)
	assert.Equal(t, int64(1), report.SoldCountsFixed)

	got := reload(t, db, p.ID)
	assert.Equal(t, int64(1), got.WishlistCount)
	assert.Equal(t, int64(0), got.SoldCount)
}
