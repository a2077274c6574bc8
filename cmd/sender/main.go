// Package main запускает отправку писем по событиям доступа.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/crimewatch/internal/app/sender"
	"github.com/magabrotheeeer/crimewatch/internal/config"
	"github.com/magabrotheeeer/crimewatch/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.Setup(cfg.Env, "sender")

	logger.Info("starting sender service",
		slog.String("smtp_host", cfg.SMTPHost),
		slog.Bool("smtp_insecure", cfg.Insecure),
		slog.String("rabbitmq_queues", rabbitmq.QueueAccessEvents+","+rabbitmq.QueueReminders),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sender.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sender app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("sender app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("sender app stopped gracefully")
}
