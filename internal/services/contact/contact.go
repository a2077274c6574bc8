// Package services принимает обращения со страницы контактов.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// MessageRepository сохраняет обращения.
type MessageRepository interface {
	CreateContactMessage(ctx context.Context, m models.ContactMessage) error
}

// StatsInvalidator сбрасывает кэш сводки, в которой учитываются непрочитанные обращения.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// ContactService сохраняет обращения пользователей.
type ContactService struct {
	repo     MessageRepository
	cache    StatsInvalidator
	statsKey string
	log      *slog.Logger
}

// NewContactService создает новый экземпляр ContactService.
func NewContactService(repo MessageRepository, cache StatsInvalidator, statsKey string, log *slog.Logger) *ContactService {
	return &ContactService{
		repo:     repo,
		cache:    cache,
		statsKey: statsKey,
		log:      log,
	}
}

// Submit сохраняет обращение со статусом new и возвращает его.
func (s *ContactService) Submit(ctx context.Context, req models.DummyContactMessage) (*models.ContactMessage, error) {
	const op = "services.ContactService.Submit"

	m := models.ContactMessage{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   req.Message,
		Status:    models.MessageNew,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateContactMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, s.statsKey); err != nil {
		s.log.Warn("failed to invalidate stats cache", slog.Any("err", err))
	}
	s.log.Info("contact message received", slog.String("id", m.ID))
	return &m, nil
}
