package domain

import "context"

// ProductView is one product page impression. ViewerKey identifies anonymous
// viewers (session or client id) when UserID is 0.
type ProductView struct {
	ProductID uint
	UserID    uint
	ViewerKey string
}

// EventPublisher ships committed funnel facts to other services. Publishing
// happens after commit and never decides the outcome of a funnel operation.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *Order) error
	PublishProductViewed(ctx context.Context, view ProductView) error
}

// ViewDeduplicator reports whether a viewer's impression of a product is the
// first inside the current window
type ViewDeduplicator interface {
	FirstView(ctx context.Context, view ProductView) (bool, error)
}
