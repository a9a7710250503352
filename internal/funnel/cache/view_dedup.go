package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

// ViewDeduplicator keeps one SET NX key per (viewer, product) for the length of
// the window. The first view inside the window wins the key.
type ViewDeduplicator struct {
	redis  redis.Cmdable
	window time.Duration
}

func NewViewDeduplicator(client redis.Cmdable, window time.Duration) *ViewDeduplicator {
	return &ViewDeduplicator{redis: client, window: window}
}

func (d *ViewDeduplicator) FirstView(ctx context.Context, view domain.ProductView) (bool, error) {
	viewer := viewerID(view)
	if d.window <= 0 || viewer == "" {
		return true, nil
	}

	key := fmt.Sprintf("funnel:view:%d:%s", view.ProductID, viewer)
	first, err := d.redis.SetNX(ctx, key, 1, d.window).Result()
	if err != nil {
		return false, fmt.Errorf("view dedup: %w", err)
	}
	return first, nil
}

// viewerID prefers the account over the anonymous key; "" means unidentifiable
func viewerID(view domain.ProductView) string {
	if view.UserID != 0 {
		return fmt.Sprintf("user:%d", view.UserID)
	}
	if view.ViewerKey != "" {
		return "anon:" + view.ViewerKey
	}
	return ""
}
