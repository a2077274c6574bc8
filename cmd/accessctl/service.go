package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/cache"
	"github.com/magabrotheeeer/crimewatch/internal/config"
	"github.com/magabrotheeeer/crimewatch/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
	accessservice "github.com/magabrotheeeer/crimewatch/internal/services/access"
	"github.com/magabrotheeeer/crimewatch/internal/storage"
)

// AccessOps операции, которые выполняет утилита.
type AccessOps interface {
	User(ctx context.Context, uid string) (*models.User, error)
	GrantPremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error)
	RevokePremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error)
	SetAccessEnabled(ctx context.Context, actor models.Principal, targetUID string, enabled bool) (*models.User, error)
}

// Opener открывает сервис и возвращает функцию освобождения ресурсов.
type Opener func(ctx context.Context) (AccessOps, func(), error)

// openService собирает сервис доступа поверх тех же хранилища, кэша и брокера,
// что использует дашборд. Без брокера события не публикуются.
func openService(logger *slog.Logger) Opener {
	return func(ctx context.Context) (AccessOps, func(), error) {
		cfg, err := config.Load(configPath())
		if err != nil {
			return nil, nil, err
		}

		db, err := storage.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect storage: %w", err)
		}
		redis, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("cache not initialized: %w", err)
		}
		closers := []func() error{redis.Close, db.Close}

		var publisher accessservice.Publisher
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, 1, 0)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events will not be published", sl.Err(err))
		} else {
			ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
			if err != nil {
				logger.Warn("failed to setup channel, events will not be published", sl.Err(err))
				_ = conn.Close()
			} else {
				publisher = rabbitmq.NewEventPublisher(ch)
				closers = append([]func() error{ch.Close, conn.Close}, closers...)
			}
		}

		svc := accessservice.NewAccessService(db, redis, publisher, nil, access.Policy{
			TrialUses:       cfg.TrialUses,
			TrialDays:       cfg.TrialDays,
			SuperAdminEmail: cfg.SuperAdminEmail,
		}, cfg.ActionTTL, logger)

		release := func() {
			for _, c := range closers {
				if err := c(); err != nil {
					logger.Warn("failed to release resource", sl.Err(err))
				}
			}
		}
		return svc, release, nil
	}
}
