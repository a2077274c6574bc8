package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/crimewatch/internal/migrations"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() { _ = storage.Close() })

	path, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	_, err = migrations.Run(storage.DB, path)
	require.NoError(t, err)
	require.NoError(t, CheckDatabaseReady(storage))

	return storage
}

// newTestUser возвращает запись USER по умолчанию.
func newTestUser(uid, email string, createdAt time.Time) models.User {
	return models.User{
		UID:                uid,
		Email:              email,
		DisplayName:        "Test User",
		Role:               models.RoleUser,
		AccessEnabled:      true,
		TrialsRemaining:    3,
		SubscriptionStatus: models.SubscriptionNone,
		CreatedAt:          createdAt,
	}
}
