package command

import (
	"errors"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

func requireUser(userID uint) error {
	if userID == 0 {
		return domain.Validation("user_id is required")
	}
	return nil
}

func requireQuantity(quantity int) error {
	if quantity <= 0 {
		return domain.Validation("quantity must be greater than 0")
	}
	return nil
}

// notFoundAs names a bare ErrNotFound from storage after the entity the caller asked for
func notFoundAs(err error, what string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound(what)
	}
	return err
}
