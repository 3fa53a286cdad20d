package app

import (
	"github.com/talkincode/productgate/internal/product"
	"github.com/talkincode/productgate/pkg/metrics"
	"go.uber.org/zap"
)

// subscribeEvents attaches the observability subscribers for product
// write events published by the API layer.
func (a *Application) subscribeEvents() {
	subscribe := func(topic, counter string) {
		if err := a.bus.Subscribe(topic, func(backend, id string) {
			metrics.Incr(counter)
			zap.L().Info(topic,
				zap.String("backend", backend),
				zap.String("id", id))
		}); err != nil {
			zap.S().Errorf("event subscribe error %s", err.Error())
		}
	}

	subscribe(product.EventCreated, "product_created_total")
	subscribe(product.EventUpdated, "product_updated_total")
	subscribe(product.EventDeleted, "product_deleted_total")
}
