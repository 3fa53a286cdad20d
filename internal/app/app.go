package app

import (
	"os"
	"time"
	_ "time/tzdata"

	evbus "github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"github.com/talkincode/productgate/config"
	"github.com/talkincode/productgate/internal/product"
	"github.com/talkincode/productgate/internal/users"
	"github.com/talkincode/productgate/pkg/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

// Application wires configuration, storage backends, the users-api
// client, the event bus and background jobs. The active product store is
// selected once in Init and never changes afterwards.
type Application struct {
	appConfig   *config.AppConfig
	gormDB      *gorm.DB
	docStore    *product.DocStore
	store       product.Store
	usersClient *users.Client
	bus         evbus.Bus
	sched       *cron.Cron
	startedAt   time.Time
}

// Ensure Application implements all provider interfaces
var (
	_ DBProvider     = (*Application)(nil)
	_ ConfigProvider = (*Application)(nil)
	_ StoreProvider  = (*Application)(nil)
	_ BusProvider    = (*Application)(nil)
	_ AppContext     = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

func (a *Application) Store() product.Store {
	return a.store
}

func (a *Application) DocStore() *product.DocStore {
	return a.docStore
}

func (a *Application) Bus() evbus.Bus {
	return a.bus
}

func (a *Application) UsersClient() *users.Client {
	return a.usersClient
}

func (a *Application) StartedAt() time.Time {
	return a.startedAt
}

// OverrideStore replaces the active product store (used in tests)
func (a *Application) OverrideStore(s product.Store) {
	a.store = s
}

func (a *Application) Init() {
	cfg := a.appConfig
	a.startedAt = time.Now()

	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger()
	cfg.InitDirs()

	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("failed to initialize metrics:", err)
	}

	a.usersClient = users.NewClient(cfg.Users.Baseurl, time.Duration(cfg.Users.Timeout)*time.Second)

	a.docStore, err = product.OpenDocStore(cfg.Document.Path)
	if err != nil {
		zap.S().Fatalf("document store init failed: %v", err)
	}

	// The active backend is fixed here for the process lifetime. The
	// document surface stays reachable under /cosmos either way, so the
	// relational database is only opened when it is the active backend.
	if cfg.Backend == config.BackendPostgres {
		a.gormDB = getDatabase(cfg.Database)
		zap.S().Infof("database connection successful, backend: %s", cfg.Backend)
		if err := a.MigrateDB(); err != nil {
			zap.S().Errorf("database migration failed: %v", err)
		}
		a.store = product.NewPgStore(a.gormDB, a.usersClient)
	} else {
		zap.S().Infof("document store active, backend: %s", cfg.Backend)
		a.store = a.docStore
	}

	a.bus = evbus.New()
	a.subscribeEvents()
	a.initJob()
}

func (a *Application) initLogger() {
	cfg := a.appConfig

	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.docStore != nil {
		_ = a.docStore.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
