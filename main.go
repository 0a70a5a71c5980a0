package main

import (
	"bitwise74/secure-file-ops/app"
	"bitwise74/secure-file-ops/config"
	"bitwise74/secure-file-ops/internal/service"
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	if err := app.MakeLogger(cfg.App.LogLevel); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := app.NewDeps(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	if cfg.Files.OrphanSweepEvery > 0 {
		service.OrphanCleanup(ctx, cfg.Files.OrphanSweepEvery, cfg.Files.OrphanGrace, d.DB, d.Store)
	}

	router := app.NewRouter(d)

	zap.L().Info("Server starting", zap.Int("port", cfg.Host.Port), zap.String("storage", cfg.Storage.Type))

	if err := router.Run(fmt.Sprintf(":%d", cfg.Host.Port)); err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}
