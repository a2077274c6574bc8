package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/crimewatch/internal/models"
	"github.com/magabrotheeeer/crimewatch/internal/storage"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListUsers(ctx context.Context, role models.Role, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockRepository) Stats(ctx context.Context, now time.Time) (models.Stats, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(models.Stats), args.Error(1)
}

func (m *MockRepository) ListContactMessages(ctx context.Context, status models.MessageStatus, limit, offset int) ([]*models.ContactMessage, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ContactMessage), args.Error(1)
}

func (m *MockRepository) UpdateContactMessageStatus(ctx context.Context, id string, status models.MessageStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAdminService_ListUsers(t *testing.T) {
	tests := []struct {
		name       string
		role       models.Role
		limit      int
		offset     int
		setupMocks func(r *MockRepository)
		wantLen    int
		wantErr    bool
	}{
		{
			name:  "все роли с лимитом по умолчанию",
			limit: 0,
			setupMocks: func(r *MockRepository) {
				r.On("ListUsers", mock.Anything, models.Role(""), 50, 0).
					Return([]*models.User{{UID: "u1"}, {UID: "a1"}}, nil).Once()
			},
			wantLen: 2,
		},
		{
			name:   "только администраторы, лимит ограничен",
			role:   models.RoleAdmin,
			limit:  1000,
			offset: -5,
			setupMocks: func(r *MockRepository) {
				r.On("ListUsers", mock.Anything, models.RoleAdmin, 200, 0).
					Return([]*models.User{{UID: "a1"}}, nil).Once()
			},
			wantLen: 1,
		},
		{
			name:       "неизвестная роль",
			role:       "ROOT",
			setupMocks: func(_ *MockRepository) {},
			wantErr:    true,
		},
		{
			name: "ошибка хранилища",
			setupMocks: func(r *MockRepository) {
				r.On("ListUsers", mock.Anything, models.Role(""), 50, 0).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)

			users, err := NewAdminService(repo, new(MockCache), newNoopLogger()).ListUsers(context.Background(), tt.role, tt.limit, tt.offset)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, users, tt.wantLen)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAdminService_Stats(t *testing.T) {
	want := models.Stats{TotalUsers: 10, TotalAdmins: 2, ActiveSubscriptions: 3, TrialUsers: 4, UnreadMessages: 1}

	t.Run("из кэша", func(t *testing.T) {
		repo := new(MockRepository)
		c := new(MockCache)
		c.On("Get", mock.Anything, StatsCacheKey, mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(2).(*models.Stats)) = want
		}).Return(true, nil).Once()

		got, err := NewAdminService(repo, c, newNoopLogger()).Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
		repo.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything)
	})

	t.Run("промах кэша", func(t *testing.T) {
		repo := new(MockRepository)
		c := new(MockCache)
		c.On("Get", mock.Anything, StatsCacheKey, mock.Anything).Return(false, nil).Once()
		repo.On("Stats", mock.Anything, mock.Anything).Return(want, nil).Once()
		c.On("Set", mock.Anything, StatsCacheKey, want, time.Minute).Return(nil).Once()

		got, err := NewAdminService(repo, c, newNoopLogger()).Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
		c.AssertExpectations(t)
	})

	t.Run("кэш недоступен", func(t *testing.T) {
		repo := new(MockRepository)
		c := new(MockCache)
		c.On("Get", mock.Anything, StatsCacheKey, mock.Anything).Return(false, errors.New("redis down")).Once()
		repo.On("Stats", mock.Anything, mock.Anything).Return(want, nil).Once()
		c.On("Set", mock.Anything, StatsCacheKey, want, time.Minute).Return(errors.New("redis down")).Once()

		got, err := NewAdminService(repo, c, newNoopLogger()).Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestAdminService_Messages(t *testing.T) {
	t.Run("список новых", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListContactMessages", mock.Anything, models.MessageNew, 10, 0).
			Return([]*models.ContactMessage{{ID: "m1", Status: models.MessageNew}}, nil).Once()

		msgs, err := NewAdminService(repo, new(MockCache), newNoopLogger()).ListMessages(context.Background(), models.MessageNew, 10, 0)
		require.NoError(t, err)
		assert.Len(t, msgs, 1)
	})

	t.Run("неизвестный статус в фильтре", func(t *testing.T) {
		_, err := NewAdminService(new(MockRepository), new(MockCache), newNoopLogger()).ListMessages(context.Background(), "spam", 10, 0)
		assert.Error(t, err)
	})

	t.Run("смена статуса сбрасывает сводку", func(t *testing.T) {
		repo := new(MockRepository)
		c := new(MockCache)
		repo.On("UpdateContactMessageStatus", mock.Anything, "m1", models.MessageRead).Return(nil).Once()
		c.On("Invalidate", mock.Anything, StatsCacheKey).Return(nil).Once()

		err := NewAdminService(repo, c, newNoopLogger()).UpdateMessageStatus(context.Background(), "m1", models.MessageRead)
		require.NoError(t, err)
		c.AssertExpectations(t)
	})

	t.Run("обращение не найдено", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpdateContactMessageStatus", mock.Anything, "missing", models.MessageArchived).Return(storage.ErrMessageNotFound).Once()

		err := NewAdminService(repo, new(MockCache), newNoopLogger()).UpdateMessageStatus(context.Background(), "missing", models.MessageArchived)
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)
	})
}
