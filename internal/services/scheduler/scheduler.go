package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// ReminderRepository выбирает пользователей, которым пора отправить напоминание.
type ReminderRepository interface {
	FindTrialsExpiringToday(ctx context.Context, now time.Time) ([]*models.User, error)
	FindSubscriptionsExpiringTomorrow(ctx context.Context, now time.Time) ([]*models.User, error)
}

// Publisher отправляет события в брокер.
type Publisher interface {
	Publish(ctx context.Context, e models.Event) error
}

// SchedulerService периодически публикует напоминания об окончании
// пробного окна и подписки.
type SchedulerService struct {
	repo      ReminderRepository
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ReminderRepository, publisher Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

const defaultTick = 24 * time.Hour

// Run выполняет оба прохода сразу и затем раз в tick, пока не отменён ctx.
func (s *SchedulerService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = defaultTick
	}
	s.RunOnce(ctx)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один проход по обоим видам напоминаний.
func (s *SchedulerService) RunOnce(ctx context.Context) {
	now := s.now()
	s.runTrialsExpiringToday(ctx, now)
	s.runSubscriptionsExpiringTomorrow(ctx, now)
}

func (s *SchedulerService) runTrialsExpiringToday(ctx context.Context, now time.Time) {
	s.log.Info("looking for trial windows ending today")
	users, err := s.repo.FindTrialsExpiringToday(ctx, now)
	if err != nil {
		s.log.Error("failed to find trials", sl.Err(err))
		return
	}
	if len(users) == 0 {
		s.log.Info("no expiring trials found")
		return
	}
	s.log.Info("found expiring trials", "count", len(users))
	for _, u := range users {
		event := models.NewEvent(models.EventTrialExpiring, *u, now)
		event.ExpiryDate = u.TrialExpiryDate
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Error("failed to publish message", slog.String("user_uid", u.UID), sl.Err(err))
		}
	}
}

func (s *SchedulerService) runSubscriptionsExpiringTomorrow(ctx context.Context, now time.Time) {
	s.log.Info("looking for subscriptions expiring tomorrow")
	users, err := s.repo.FindSubscriptionsExpiringTomorrow(ctx, now)
	if err != nil {
		s.log.Error("failed to find subscriptions", sl.Err(err))
		return
	}
	if len(users) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", "count", len(users))
	for _, u := range users {
		event := models.NewEvent(models.EventSubscriptionExpiring, *u, now)
		event.ExpiryDate = u.SubscriptionExpiryDate
		if u.SubscriptionPlan != nil {
			event.Plan = *u.SubscriptionPlan
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Error("failed to publish message", slog.String("user_uid", u.UID), sl.Err(err))
		}
	}
}
