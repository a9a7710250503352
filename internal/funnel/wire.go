//go:build wireinject
// +build wireinject

package funnel

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/tair/storefront-funnel/internal/funnel/delivery/http"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/command"
)

// InitializeHTTPHandler initializes the funnel handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, opts Options) (*httpDelivery.FunnelHandler, error) {
	wire.Build(AllHandlersSet)
	return nil, nil
}

// InitializeViewRecorder builds the handler the counter worker applies queued views with
func InitializeViewRecorder(db *gorm.DB, opts Options) (*command.RecordViewHandler, error) {
	wire.Build(
		RepositorySet,
		ProvideRecordViewHandler,
	)
	return nil, nil
}
