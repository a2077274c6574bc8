package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/cache"
	"github.com/magabrotheeeer/crimewatch/internal/config"
	"github.com/magabrotheeeer/crimewatch/internal/grpc/client"
	"github.com/magabrotheeeer/crimewatch/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/metrics"
	"github.com/magabrotheeeer/crimewatch/internal/migrations"
	accessservice "github.com/magabrotheeeer/crimewatch/internal/services/access"
	adminservice "github.com/magabrotheeeer/crimewatch/internal/services/admin"
	contactservice "github.com/magabrotheeeer/crimewatch/internal/services/contact"
	"github.com/magabrotheeeer/crimewatch/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-сервер дашборда со всеми его ресурсами.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *storage.Storage
	cache      *cache.Cache
	conn       *amqp.Connection
	ch         *amqp.Channel
	authClient *client.AuthClient
}

// New поднимает хранилище, кэш, брокер и клиент идентификации и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	a.db = db
	version, err := migrations.Run(db.DB, cfg.MigrationsPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("migrations applied", slog.Uint64("schema_version", uint64(version)))

	a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	a.conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	a.authClient, err = client.NewAuthClient(cfg.GRPCAuthAddress)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}

	policy := access.Policy{
		TrialUses:       cfg.TrialUses,
		TrialDays:       cfg.TrialDays,
		SuperAdminEmail: cfg.SuperAdminEmail,
	}
	accessService := accessservice.NewAccessService(
		db,
		a.cache,
		rabbitmq.NewEventPublisher(a.ch),
		metrics.New(prometheus.DefaultRegisterer),
		policy,
		cfg.ActionTTL,
		logger,
	)
	adminService := adminservice.NewAdminService(db, a.cache, logger)
	contactService := contactservice.NewContactService(db, a.cache, adminservice.StatsCacheKey, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Auth:      a.authClient,
		Access:    accessService,
		Admin:     adminService,
		Contact:   contactService,
		DB:        db,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// Run обслуживает запросы до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.authClient != nil {
		if err := a.authClient.Close(); err != nil {
			a.logger.Error("failed to close auth client", sl.Err(err))
		}
	}
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
