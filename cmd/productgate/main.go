package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talkincode/productgate/config"
	"github.com/talkincode/productgate/internal/api"
	"github.com/talkincode/productgate/internal/app"
	"github.com/talkincode/productgate/internal/webserver"
	"go.uber.org/zap"
)

var (
	conffile = flag.String("c", "productgate.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate database tables, then exit")
)

func main() {
	flag.Parse()

	cfg := config.LoadConfig(*conffile)
	application := app.NewApplication(cfg)
	application.Init()
	defer application.Release()

	if *initdb {
		if cfg.Backend != config.BackendPostgres {
			zap.S().Fatal("initdb requires the postgres backend")
		}
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	ws := webserver.NewWebServer(cfg)
	api.NewHandler(application).Register(ws)

	go func() {
		if err := ws.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("web server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.S().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ws.Shutdown(ctx); err != nil {
		zap.S().Errorf("shutdown error: %v", err)
	}
}
