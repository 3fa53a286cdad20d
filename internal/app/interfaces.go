package app

import (
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/talkincode/productgate/config"
	"github.com/talkincode/productgate/internal/product"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the active product store and the always
// reachable document store
type StoreProvider interface {
	Store() product.Store
	DocStore() *product.DocStore
}

// BusProvider provides the process-local event bus
type BusProvider interface {
	Bus() evbus.Bus
}

// AppContext combines all provider interfaces for full application
// context. Handlers should depend on specific providers or this
// combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	StoreProvider
	BusProvider

	StartedAt() time.Time
}
