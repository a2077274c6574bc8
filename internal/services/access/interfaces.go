package services

import (
	"context"
	"time"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// UserRepository хранилище записей доступа: чтение, создание и слияние по uid.
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	CreateUser(ctx context.Context, u models.User) error
	MergeUser(ctx context.Context, uid string, upd models.UserUpdate) error
}

// ActionLock отмечает уже учтённые действия применения фильтра.
type ActionLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, key string) error
}

// Publisher отправляет события доступа в брокер.
type Publisher interface {
	Publish(ctx context.Context, e models.Event) error
}

// Recorder собирает метрики сервиса.
type Recorder interface {
	ObserveDecision(r access.Result)
	TrialDebited()
	DuplicateAction()
	SubscriptionActivated(plan string)
	PremiumChanged(granted bool)
	AccessToggled(enabled bool)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.Event) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ObserveDecision(access.Result) {}
func (nopRecorder) TrialDebited()                 {}
func (nopRecorder) DuplicateAction()              {}
func (nopRecorder) SubscriptionActivated(string)  {}
func (nopRecorder) PremiumChanged(bool)           {}
func (nopRecorder) AccessToggled(bool)            {}
