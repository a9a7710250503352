// Package memorytest is an in-process implementation of the funnel repositories
// for handler tests.
// Its unit of work snapshots state and restores it when fn fails, so handlers
// see the same commit/rollback behavior they get from PostgreSQL.
package memorytest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

type pair struct{ user, product uint }

type state struct {
	products   map[uint]domain.Product
	wishlist   map[pair]domain.WishlistEntry
	carts      map[uint]domain.Cart // by user
	items      map[uint]domain.CartItem
	orders     map[uint]domain.Order
	orderItems []domain.OrderItem
	events     []domain.ProductEvent
	nextID     uint
	tick       int64
}

// Store holds all funnel tables in memory
type Store struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	st       state
	failures map[string]failure
}

type failure struct {
	err  error
	skip int
}

func New() *Store {
	return &Store{
		st: state{
			products: map[uint]domain.Product{},
			wishlist: map[pair]domain.WishlistEntry{},
			carts:    map[uint]domain.Cart{},
			items:    map[uint]domain.CartItem{},
			orders:   map[uint]domain.Order{},
		},
		failures: map[string]failure{},
	}
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// now returns a strictly increasing timestamp so newest-first ordering is deterministic
func (s *Store) now() time.Time {
	s.st.tick++
	return epoch.Add(time.Duration(s.st.tick) * time.Millisecond)
}

func (s *Store) id() uint {
	s.st.nextID++
	return s.st.nextID
}

// FailOn makes the named repository operation return err, e.g. "CreateItem"
func (s *Store) FailOn(op string, err error) {
	s.FailOnCall(op, 1, err)
}

// FailOnCall lets the first n-1 calls of op succeed and fails every call after
func (s *Store) FailOnCall(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.failures[op] = failure{err: err, skip: n - 1}
}

func (s *Store) fail(op string) error {
	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	if f.skip > 0 {
		f.skip--
		s.failures[op] = f
		return nil
	}
	return f.err
}

func (s *Store) AddProduct(title string, price decimal.Decimal) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	p := domain.Product{ID: id, Title: title, Slug: fmt.Sprintf("product-%d", id), Price: price, CreatedAt: s.now()}
	s.st.products[id] = p
	return p
}

func (s *Store) SetPrice(productID uint, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.products[productID]
	p.Price = price
	s.st.products[productID] = p
}

func (s *Store) DeleteProduct(productID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.products, productID)
}

func (s *Store) Product(id uint) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.products[id]
}

// DriftCounters overwrites counters directly, bypassing the ledger
func (s *Store) DriftCounters(productID uint, wishlist, sold int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.products[productID]
	p.WishlistCount, p.SoldCount = wishlist, sold
	s.st.products[productID] = p
}

func (s *Store) Events(kind domain.EventKind) []domain.ProductEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ProductEvent
	for _, e := range s.st.events {
		if e.EventType == kind {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) WishlistRows(productID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.st.wishlist {
		if k.product == productID {
			n++
		}
	}
	return n
}

// CartItems lists the user's cart lines in insertion order
func (s *Store) CartItems(userID uint) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.st.carts[userID]
	if !ok {
		return nil
	}
	var out []domain.CartItem
	for _, it := range s.st.items {
		if it.CartID == cart.ID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.orders)
}

func (s *Store) OrderItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.orderItems)
}

func (s *Store) snapshot() state {
	c := s.st
	c.products = make(map[uint]domain.Product, len(s.st.products))
	for k, v := range s.st.products {
		c.products[k] = v
	}
	c.wishlist = make(map[pair]domain.WishlistEntry, len(s.st.wishlist))
	for k, v := range s.st.wishlist {
		c.wishlist[k] = v
	}
	c.carts = make(map[uint]domain.Cart, len(s.st.carts))
	for k, v := range s.st.carts {
		c.carts[k] = v
	}
	c.items = make(map[uint]domain.CartItem, len(s.st.items))
	for k, v := range s.st.items {
		c.items[k] = v
	}
	c.orders = make(map[uint]domain.Order, len(s.st.orders))
	for k, v := range s.st.orders {
		c.orders[k] = v
	}
	c.orderItems = append([]domain.OrderItem(nil), s.st.orderItems...)
	c.events = append([]domain.ProductEvent(nil), s.st.events...)
	return c
}

func (s *Store) UnitOfWork() domain.UnitOfWork { return unitOfWork{s} }
func (s *Store) Ledger() domain.LedgerRepository { return ledgerRepo{s} }
func (s *Store) Products() domain.ProductRepository { return productRepo{s} }
func (s *Store) Wishlist() domain.WishlistRepository { return wishlistRepo{s} }
func (s *Store) Carts() domain.CartRepository { return cartRepo{s} }
func (s *Store) Orders() domain.OrderRepository { return orderRepo{s} }

type unitOfWork struct{ s *Store }

// Do serializes units of work and passes a nil tx; repositories ignore it
func (u unitOfWork) Do(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	u.s.txMu.Lock()
	defer u.s.txMu.Unlock()

	u.s.mu.Lock()
	snap := u.s.snapshot()
	u.s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			u.s.restore(snap)
			panic(r)
		}
		if err != nil {
			u.s.restore(snap)
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	return fn(nil)
}

func (s *Store) restore(snap state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = snap
}

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) RecordEvent(_ context.Context, _ *gorm.DB, entry domain.LedgerEntry) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("RecordEvent"); err != nil {
		return err
	}
	if !entry.Kind.Valid() {
		return fmt.Errorf("unknown event kind %q", entry.Kind)
	}
	p, ok := s.st.products[entry.ProductID]
	if !ok {
		return domain.NotFound("product")
	}
	clamp := func(v int64) int64 {
		if v < 0 {
			return 0
		}
		return v
	}
	switch entry.Kind.CounterColumn() {
	case "views":
		p.Views = clamp(p.Views + entry.Delta)
	case "wishlist_count":
		p.WishlistCount = clamp(p.WishlistCount + entry.Delta)
	case "sold_count":
		p.SoldCount = clamp(p.SoldCount + entry.Delta)
	}
	s.st.products[p.ID] = p

	meta := map[string]interface{}{}
	for k, v := range entry.Meta {
		meta[k] = v
	}
	s.st.events = append(s.st.events, domain.ProductEvent{
		ID:        s.id(),
		ProductID: entry.ProductID,
		EventType: entry.Kind,
		Meta:      meta,
		CreatedAt: s.now(),
	})
	return nil
}

func (r ledgerRepo) Reconcile(_ context.Context, _ *gorm.DB) (*domain.ReconcileReport, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Reconcile"); err != nil {
		return nil, err
	}
	wish := map[uint]int64{}
	for k := range s.st.wishlist {
		wish[k.product]++
	}
	sold := map[uint]int64{}
	for _, it := range s.st.orderItems {
		sold[it.ProductID] += int64(it.Quantity)
	}
	report := &domain.ReconcileReport{FinishedAt: s.now()}
	for id, p := range s.st.products {
		if p.WishlistCount != wish[id] {
			p.WishlistCount = wish[id]
			report.WishlistCountsFixed++
		}
		if p.SoldCount != sold[id] {
			p.SoldCount = sold[id]
			report.SoldCountsFixed++
		}
		s.st.products[id] = p
	}
	return report, nil
}

type productRepo struct{ s *Store }

func (r productRepo) FindByID(_ context.Context, _ *gorm.DB, id uint) (*domain.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindProduct"); err != nil {
		return nil, err
	}
	p, ok := s.st.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	return &p, nil
}

type wishlistRepo struct{ s *Store }

func (r wishlistRepo) Insert(_ context.Context, _ *gorm.DB, userID, productID uint) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertWishlist"); err != nil {
		return false, err
	}
	if _, ok := s.st.products[productID]; !ok {
		return false, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	k := pair{userID, productID}
	if _, ok := s.st.wishlist[k]; ok {
		return false, nil
	}
	s.st.wishlist[k] = domain.WishlistEntry{ID: s.id(), UserID: userID, ProductID: productID, CreatedAt: s.now()}
	return true, nil
}

func (r wishlistRepo) Delete(_ context.Context, _ *gorm.DB, userID, productID uint) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteWishlist"); err != nil {
		return false, err
	}
	k := pair{userID, productID}
	if _, ok := s.st.wishlist[k]; !ok {
		return false, nil
	}
	delete(s.st.wishlist, k)
	return true, nil
}

func (r wishlistRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uint, limit, offset int) ([]domain.WishlistItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []domain.WishlistEntry
	for k, e := range s.st.wishlist {
		if k.user == userID {
			if _, ok := s.st.products[k.product]; ok {
				entries = append(entries, e)
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })

	items := []domain.WishlistItem{}
	for _, e := range page(entries, limit, offset) {
		p := s.st.products[e.ProductID]
		items = append(items, domain.WishlistItem{
			ProductID:    p.ID,
			Title:        p.Title,
			Slug:         p.Slug,
			Price:        p.Price,
			MainImageURL: p.MainImageURL,
			FavoritedAt:  e.CreatedAt,
		})
	}
	return items, nil
}

type cartRepo struct{ s *Store }

func (r cartRepo) EnsureCart(_ context.Context, _ *gorm.DB, userID uint) (*domain.Cart, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("EnsureCart"); err != nil {
		return nil, err
	}
	c, ok := s.st.carts[userID]
	if !ok {
		now := s.now()
		c = domain.Cart{ID: s.id(), UserID: userID, CreatedAt: now, UpdatedAt: now}
		s.st.carts[userID] = c
	}
	return &c, nil
}

func (r cartRepo) FindByUser(_ context.Context, _ *gorm.DB, userID uint) (*domain.Cart, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.carts[userID]
	if !ok {
		return nil, fmt.Errorf("%w: cart of user %d", domain.ErrNotFound, userID)
	}
	return &c, nil
}

func (s *Store) findItem(cartID, productID uint) (domain.CartItem, bool) {
	for _, it := range s.st.items {
		if it.CartID == cartID && it.ProductID == productID {
			return it, true
		}
	}
	return domain.CartItem{}, false
}

func (r cartRepo) UpsertItem(_ context.Context, _ *gorm.DB, cartID, productID uint, quantity int) (*domain.CartItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertItem"); err != nil {
		return nil, err
	}
	if _, ok := s.st.products[productID]; !ok {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	it, ok := s.findItem(cartID, productID)
	if ok {
		it.Quantity += quantity
		it.UpdatedAt = s.now()
	} else {
		now := s.now()
		it = domain.CartItem{ID: s.id(), CartID: cartID, ProductID: productID, Quantity: quantity, CreatedAt: now, UpdatedAt: now}
	}
	s.st.items[it.ID] = it
	return &it, nil
}

func (r cartRepo) SetItemQuantity(_ context.Context, _ *gorm.DB, cartID, productID uint, quantity int) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.findItem(cartID, productID)
	if !ok {
		return false, nil
	}
	it.Quantity = quantity
	it.UpdatedAt = s.now()
	s.st.items[it.ID] = it
	return true, nil
}

func (r cartRepo) DeleteItem(_ context.Context, _ *gorm.DB, cartID, productID uint) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.findItem(cartID, productID)
	if !ok {
		return false, nil
	}
	delete(s.st.items, it.ID)
	return true, nil
}

func (r cartRepo) Lines(_ context.Context, _ *gorm.DB, cartID uint, _ bool) ([]domain.CartLine, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Lines"); err != nil {
		return nil, err
	}
	lines := []domain.CartLine{}
	for _, it := range s.st.items {
		if it.CartID != cartID {
			continue
		}
		p, ok := s.st.products[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, domain.CartLine{
			ItemID:       it.ID,
			ProductID:    p.ID,
			Title:        p.Title,
			MainImageURL: p.MainImageURL,
			UnitPrice:    p.Price,
			Quantity:     it.Quantity,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })
	return lines, nil
}

func (r cartRepo) DeleteItems(_ context.Context, _ *gorm.DB, cartID uint, itemIDs []uint) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteItems"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range itemIDs {
		if it, ok := s.st.items[id]; ok && it.CartID == cartID {
			delete(s.st.items, id)
			n++
		}
	}
	return n, nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, _ *gorm.DB, order *domain.Order) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateOrder"); err != nil {
		return err
	}
	for _, o := range s.st.orders {
		if o.Reference == order.Reference {
			return errors.New("duplicate order reference")
		}
	}
	order.ID = s.id()
	order.CreatedAt = s.now()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	stored.Items = nil
	s.st.orders[order.ID] = stored
	return nil
}

func (r orderRepo) CreateItem(_ context.Context, _ *gorm.DB, item *domain.OrderItem) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateItem"); err != nil {
		return err
	}
	if _, ok := s.st.orders[item.OrderID]; !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, item.OrderID)
	}
	item.ID = s.id()
	item.CreatedAt = s.now()
	s.st.orderItems = append(s.st.orderItems, *item)
	return nil
}

func (s *Store) withItems(o domain.Order) domain.Order {
	o.Items = nil
	for _, it := range s.st.orderItems {
		if it.OrderID == o.ID {
			o.Items = append(o.Items, it)
		}
	}
	return o
}

func (s *Store) sortedOrders(keep func(domain.Order) bool) []domain.Order {
	var out []domain.Order
	for _, o := range s.st.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r orderRepo) FindByUser(_ context.Context, _ *gorm.DB, userID uint, limit, offset int) ([]domain.Order, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := []domain.Order{}
	for _, o := range page(s.sortedOrders(func(o domain.Order) bool { return o.UserID == userID }), limit, offset) {
		orders = append(orders, s.withItems(o))
	}
	return orders, nil
}

func (r orderRepo) FindForUser(_ context.Context, _ *gorm.DB, orderID, userID uint) (*domain.Order, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	o = s.withItems(o)
	return &o, nil
}

func (r orderRepo) FindAll(_ context.Context, _ *gorm.DB, limit, offset int) ([]domain.Order, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := []domain.Order{}
	for _, o := range page(s.sortedOrders(func(domain.Order) bool { return true }), limit, offset) {
		orders = append(orders, s.withItems(o))
	}
	return orders, nil
}

func page[T any](rows []T, limit, offset int) []T {
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
