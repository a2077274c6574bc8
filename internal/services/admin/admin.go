// Package services содержит операции панели суперадминистратора.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// StatsCacheKey ключ кэша сводки.
const StatsCacheKey = "admin:stats"

const (
	statsTTL     = time.Minute
	defaultLimit = 50
	maxLimit     = 200
)

// AdminRepository описывает выборки для панели администратора.
type AdminRepository interface {
	ListUsers(ctx context.Context, role models.Role, limit, offset int) ([]*models.User, error)
	Stats(ctx context.Context, now time.Time) (models.Stats, error)
	ListContactMessages(ctx context.Context, status models.MessageStatus, limit, offset int) ([]*models.ContactMessage, error)
	UpdateContactMessageStatus(ctx context.Context, id string, status models.MessageStatus) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// AdminService реализует чтение списков и сводки. Решения о доступе
// здесь не кэшируются, кэшируется только сводка.
type AdminService struct {
	repo  AdminRepository
	cache Cache
	log   *slog.Logger
}

// NewAdminService создает новый экземпляр AdminService.
func NewAdminService(repo AdminRepository, cache Cache, log *slog.Logger) *AdminService {
	return &AdminService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListUsers возвращает страницу пользователей, role может быть пустой.
func (s *AdminService) ListUsers(ctx context.Context, role models.Role, limit, offset int) ([]*models.User, error) {
	const op = "services.AdminService.ListUsers"
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%s: unknown role %q", op, role)
	}
	limit, offset = page(limit, offset)
	users, err := s.repo.ListUsers(ctx, role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Stats возвращает сводку, используя кэш.
func (s *AdminService) Stats(ctx context.Context) (models.Stats, error) {
	const op = "services.AdminService.Stats"

	var cached models.Stats
	found, err := s.cache.Get(ctx, StatsCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read stats from cache", slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	st, err := s.repo.Stats(ctx, time.Now().UTC())
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, StatsCacheKey, st, statsTTL); err != nil {
		s.log.Warn("failed to cache stats", slog.Any("err", err))
	}
	return st, nil
}

// ListMessages возвращает обращения, status может быть пустым.
func (s *AdminService) ListMessages(ctx context.Context, status models.MessageStatus, limit, offset int) ([]*models.ContactMessage, error) {
	const op = "services.AdminService.ListMessages"
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%s: unknown status %q", op, status)
	}
	limit, offset = page(limit, offset)
	msgs, err := s.repo.ListContactMessages(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return msgs, nil
}

// UpdateMessageStatus меняет статус обращения и сбрасывает кэш сводки.
func (s *AdminService) UpdateMessageStatus(ctx context.Context, id string, status models.MessageStatus) error {
	const op = "services.AdminService.UpdateMessageStatus"
	if !status.Valid() {
		return fmt.Errorf("%s: unknown status %q", op, status)
	}
	if err := s.repo.UpdateContactMessageStatus(ctx, id, status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, StatsCacheKey); err != nil {
		s.log.Warn("failed to invalidate stats cache", slog.Any("err", err))
	}
	return nil
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
