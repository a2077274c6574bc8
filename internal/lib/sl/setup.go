package sl

import (
	"io"
	"log/slog"
	"os"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Setup создаёт логгер сервиса по окружению из конфига: local пишет текст с
// уровнем debug, dev и prod пишут JSON (dev с debug, prod с info).
// Неизвестное окружение обрабатывается как prod.
func Setup(env, service string) *slog.Logger {
	return setup(os.Stdout, env, service)
}

func setup(w io.Writer, env, service string) *slog.Logger {
	var h slog.Handler
	switch env {
	case envLocal:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	case envDev:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(h).With(slog.String("service", service), slog.String("env", env))
}
