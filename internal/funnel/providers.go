package funnel

import (
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/cache"
	httpDelivery "github.com/tair/storefront-funnel/internal/funnel/delivery/http"
	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/internal/funnel/repository"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/command"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/query"
	"github.com/tair/storefront-funnel/pkg/auth"
)

// Options carries the optional collaborators of the HTTP handler. A nil
// Publisher, Deduplicator or RateLimiter switches that feature off.
type Options struct {
	Publisher      domain.EventPublisher
	Deduplicator   domain.ViewDeduplicator
	Tokens         *auth.TokenService
	RateLimiter    *cache.RateLimiter
	Registerer     prometheus.Registerer
	AsyncViews     bool
	RequestTimeout time.Duration
}

// Repository providers
func ProvideUnitOfWork(db *gorm.DB) domain.UnitOfWork {
	return repository.NewGormUnitOfWork(db)
}

func ProvideLedgerRepository(db *gorm.DB) domain.LedgerRepository {
	return repository.NewGormLedgerRepository(db)
}

func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewGormProductRepository(db)
}

func ProvideWishlistRepository(db *gorm.DB) domain.WishlistRepository {
	return repository.NewGormWishlistRepository(db)
}

func ProvideCartRepository(db *gorm.DB) domain.CartRepository {
	return repository.NewGormCartRepository(db)
}

func ProvideOrderRepository(db *gorm.DB) domain.OrderRepository {
	return repository.NewGormOrderRepository(db)
}

// Command handler providers that depend on Options
func ProvideCheckoutHandler(uow domain.UnitOfWork, carts domain.CartRepository, orders domain.OrderRepository, ledger domain.LedgerRepository, opts Options) *command.CheckoutHandler {
	return command.NewCheckoutHandler(uow, carts, orders, ledger, opts.Publisher)
}

func ProvideRecordViewHandler(uow domain.UnitOfWork, ledger domain.LedgerRepository, opts Options) *command.RecordViewHandler {
	return command.NewRecordViewHandler(uow, ledger, opts.Deduplicator, opts.Publisher, opts.AsyncViews)
}

// Delivery providers
func ProvideMiddlewareConfig(opts Options) httpDelivery.MiddlewareConfig {
	return httpDelivery.DefaultMiddlewareConfig(opts.Tokens, opts.RateLimiter)
}

func ProvideMetrics(opts Options) *httpDelivery.Metrics {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return httpDelivery.NewMetrics(reg)
}

func ProvideRequestTimeout(opts Options) httpDelivery.RequestTimeout {
	return httpDelivery.RequestTimeout(opts.RequestTimeout)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideUnitOfWork,
	ProvideLedgerRepository,
	ProvideProductRepository,
	ProvideWishlistRepository,
	ProvideCartRepository,
	ProvideOrderRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewAddToWishlistHandler,
	command.NewRemoveFromWishlistHandler,
	command.NewAddCartItemHandler,
	command.NewUpdateCartItemHandler,
	command.NewRemoveCartItemHandler,
	ProvideCheckoutHandler,
	ProvideRecordViewHandler,
	command.NewReconcileCountersHandler,
	wire.Struct(new(httpDelivery.Commands), "*"),
)

var QueryHandlerSet = wire.NewSet(
	query.NewListWishlistHandler,
	query.NewGetCartHandler,
	query.NewListOrdersHandler,
	query.NewGetOrderHandler,
	query.NewListAllOrdersHandler,
	query.NewGetCountersHandler,
	wire.Struct(new(httpDelivery.Queries), "*"),
)

var DeliverySet = wire.NewSet(
	ProvideMiddlewareConfig,
	ProvideMetrics,
	ProvideRequestTimeout,
	httpDelivery.NewFunnelHandlerWithDI,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
	DeliverySet,
)
