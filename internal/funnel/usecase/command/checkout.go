package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
	"github.com/tair/storefront-funnel/pkg/logger"
)

// CheckoutCommand converts the user's cart into a pending order
type CheckoutCommand struct {
	UserID   uint
	Metadata map[string]interface{}
}

// CheckoutHandler handles checkout command
type CheckoutHandler struct {
	uow       domain.UnitOfWork
	carts     domain.CartRepository
	orders    domain.OrderRepository
	ledger    domain.LedgerRepository
	publisher domain.EventPublisher
}

// NewCheckoutHandler creates a new checkout handler. publisher may be nil.
func NewCheckoutHandler(uow domain.UnitOfWork, carts domain.CartRepository, orders domain.OrderRepository, ledger domain.LedgerRepository, publisher domain.EventPublisher) *CheckoutHandler {
	return &CheckoutHandler{uow: uow, carts: carts, orders: orders, ledger: ledger, publisher: publisher}
}

// Handle executes the checkout command. Everything between reading the cart
// and draining it commits together or not at all.
func (h *CheckoutHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*domain.Order, error) {
	if err := requireUser(cmd.UserID); err != nil {
		return nil, err
	}

	var order *domain.Order
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		cart, err := h.carts.FindByUser(ctx, tx, cmd.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.EmptyCart()
			}
			return err
		}

		lines, err := h.carts.Lines(ctx, tx, cart.ID, true)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.EmptyCart()
		}

		order = &domain.Order{
			Reference: newOrderReference(),
			UserID:    cmd.UserID,
			Total:     domain.SumLines(lines),
			Status:    domain.OrderStatusPending,
		}
		if len(cmd.Metadata) > 0 {
			order.Metadata = datatypes.JSONMap(cmd.Metadata)
		}
		if err := h.orders.Create(ctx, tx, order); err != nil {
			return err
		}

		itemIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			item := domain.NewOrderItem(order.ID, line)
			if err := h.orders.CreateItem(ctx, tx, &item); err != nil {
				return err
			}
			order.Items = append(order.Items, item)

			err := h.ledger.RecordEvent(ctx, tx, domain.LedgerEntry{
				ProductID: line.ProductID,
				Kind:      domain.EventOrderItem,
				Delta:     int64(line.Quantity),
				Meta: domain.EventMeta(cmd.UserID, map[string]interface{}{
					"order_id": order.ID,
					"quantity": line.Quantity,
				}),
			})
			if err != nil {
				return fmt.Errorf("failed to record sale of product %d: %w", line.ProductID, err)
			}
			itemIDs = append(itemIDs, line.ItemID)
		}

		if _, err := h.carts.DeleteItems(ctx, tx, cart.ID, itemIDs); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("order_id", order.ID).
		Str("reference", order.Reference).
		Uint("user_id", order.UserID).
		Str("total", order.Total.String()).
		Int("lines", len(order.Items)).
		Msg("Order placed")

	if h.publisher != nil {
		if err := h.publisher.PublishOrderPlaced(ctx, order); err != nil {
			logger.Warn(ctx).Err(err).Uint("order_id", order.ID).Msg("Failed to publish order placed event")
		}
	}

	return order, nil
}

func newOrderReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + id[:16]
}
