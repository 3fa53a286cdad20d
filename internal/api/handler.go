package api

import (
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/talkincode/productgate/config"
	"github.com/talkincode/productgate/internal/app"
	"github.com/talkincode/productgate/internal/product"
	"github.com/talkincode/productgate/internal/webserver"
	"gorm.io/gorm"
)

// Handler binds the HTTP surface to the active product store. The
// document store is wired separately because its /cosmos surface stays
// reachable no matter which backend /products is bound to.
type Handler struct {
	config    *config.AppConfig
	store     product.Store
	docs      *product.DocStore
	db        *gorm.DB
	bus       evbus.Bus
	startedAt time.Time
}

func NewHandler(actx app.AppContext) *Handler {
	return &Handler{
		config:    actx.Config(),
		store:     actx.Store(),
		docs:      actx.DocStore(),
		db:        actx.DB(),
		bus:       actx.Bus(),
		startedAt: actx.StartedAt(),
	}
}

// Register attaches all routes. The with-user join only exists when the
// active store can perform it, so the route itself is conditional.
func (h *Handler) Register(ws *webserver.WebServer) {
	ws.ApiGET("/health", h.health)
	ws.ApiGET("/db/health", h.dbHealth)
	ws.ApiGET("/cosmos/health", h.cosmosHealth)

	ws.ApiGET("/products", h.listProducts)
	ws.ApiPOST("/products", h.createProduct)
	ws.ApiGET("/products/:id", h.getProduct)
	ws.ApiPUT("/products/:id", h.updateProduct)
	ws.ApiDELETE("/products/:id", h.deleteProduct)
	if _, join := h.store.(product.OwnerJoiner); join {
		ws.ApiGET("/products/:id/with-user", h.getProductWithUser)
	}

	// backend-specific aliases, always reachable
	ws.ApiGET("/cosmos/products", h.listDocProducts)
	ws.ApiPOST("/cosmos/products", h.createDocProduct)
	ws.ApiPUT("/cosmos/products/:id", h.updateDocProduct)
	ws.ApiDELETE("/cosmos/products/:id", h.deleteDocProduct)
	ws.ApiPOST("/cosmos/seed", h.seedDocProducts)
}

func (h *Handler) publish(topic, backend, id string) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(topic, backend, id)
}
