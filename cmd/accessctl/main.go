// Package main содержит консольную утилиту суперадминистратора: выдача премиум-доступа,
// включение доступа администраторов и просмотр записи пользователя.
//
// Конфиг читается так же, как у сервисов: из файла CONFIG_PATH.
//
//	accessctl premium grant <uid> --actor <uid>
//	accessctl access disable <uid> --actor <uid>
//	accessctl user show <uid>
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(openService(logger))
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
