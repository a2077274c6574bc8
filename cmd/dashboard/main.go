// Package main CrimeWatch Dashboard API
//
// @title           CrimeWatch Dashboard API
// @version         1.0
// @description     API доступа к дашборду статистики преступности: пробные использования, подписки, панель суперадминистратора

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/crimewatch/internal/app/dashboard"
	"github.com/magabrotheeeer/crimewatch/internal/config"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.Setup(cfg.Env, "dashboard")

	logger.Info("starting dashboard")
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := dashboard.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("dashboard stopped gracefully")
}
