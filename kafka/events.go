package kafka

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// OrderPlacedEvent is published once an order has committed
type OrderPlacedEvent struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	OrderID   uint              `json:"order_id"`
	Reference string            `json:"reference"`
	UserID    uint              `json:"user_id"`
	Total     decimal.Decimal   `json:"total"`
	Status    string            `json:"status"`
	Items     []OrderPlacedItem `json:"items"`
	Timestamp time.Time         `json:"timestamp"`
}

type OrderPlacedItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ProductViewedEvent carries a view to the counter worker when views are recorded asynchronously
type ProductViewedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID uint      `json:"product_id"`
	UserID    uint      `json:"user_id,omitempty"`
	ViewerKey string    `json:"viewer_key,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// View converts the event back into the domain impression
func (e ProductViewedEvent) View() domain.ProductView {
	return domain.ProductView{ProductID: e.ProductID, UserID: e.UserID, ViewerKey: e.ViewerKey}
}

func newOrderPlacedEvent(order *domain.Order) OrderPlacedEvent {
	items := make([]OrderPlacedItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderPlacedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return OrderPlacedEvent{
		OrderID:   order.ID,
		Reference: order.Reference,
		UserID:    order.UserID,
		Total:     order.Total,
		Status:    order.Status,
		Items:     items,
	}
}

// Event types
const (
	EventTypeOrderPlaced   = "order.placed"
	EventTypeProductViewed = "product.viewed"
)

// Kafka topics
const (
	TopicOrderPlaced   = "order-placed"
	TopicProductViewed = "product-viewed"
)
