package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// CreateCredentials сохраняет учётные данные нового субъекта.
func (s *Storage) CreateCredentials(ctx context.Context, c models.Credentials) error {
	const op = "storage.CreateCredentials"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO credentials (uid, email, password_hash, display_name, role, region)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		c.UID, c.Email, c.PasswordHash, c.DisplayName, string(c.Role), c.Region)
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetCredentialsByEmail возвращает учётные данные по адресу почты.
func (s *Storage) GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	const op = "storage.GetCredentialsByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, display_name, role, region
			  FROM credentials WHERE email = $1`
	var c models.Credentials
	err := s.DB.QueryRowContext(ctx, query, email).Scan(
		&c.UID, &c.Email, &c.PasswordHash, &c.DisplayName, &c.Role, &c.Region)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}
