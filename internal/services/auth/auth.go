// Package services содержит логику бизнес-уровня для учётных записей и аутентификации.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/lib/jwt"
	"github.com/magabrotheeeer/crimewatch/internal/lib/password"
	"github.com/magabrotheeeer/crimewatch/internal/models"
	"github.com/magabrotheeeer/crimewatch/internal/storage"
)

// ErrInvalidCredentials возвращается при неверной почте или пароле.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialsRepository описывает контракт хранилища учётных данных.
type CredentialsRepository interface {
	// CreateCredentials сохраняет учётные данные, storage.ErrUserExists при занятой почте.
	CreateCredentials(ctx context.Context, c models.Credentials) error

	// GetCredentialsByEmail возвращает учётные данные или storage.ErrUserNotFound.
	GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error)
}

// AuthService отвечает за регистрацию, вход и валидацию JWT.
type AuthService struct {
	creds    CredentialsRepository
	jwtMaker jwt.Maker
	policy   access.Policy
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(creds CredentialsRepository, jwtMaker jwt.Maker, policy access.Policy) *AuthService {
	return &AuthService{
		creds:    creds,
		jwtMaker: jwtMaker,
		policy:   policy,
	}
}

// Register создаёт учётную запись. Роль разрешается политикой: зарезервированный
// адрес всегда получает SUPER_ADMIN, регион сохраняется только для ADMIN.
func (s *AuthService) Register(ctx context.Context, email, displayName, rawPassword string, requested models.Role, region string) (models.Principal, error) {
	const op = "services.AuthService.Register"

	email = normalizeEmail(email)
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}

	role := s.policy.ResolveRole(email, requested)
	if role != models.RoleAdmin {
		region = ""
	}
	c := models.Credentials{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		DisplayName:  displayName,
		Role:         role,
		Region:       region,
	}
	if err := s.creds.CreateCredentials(ctx, c); err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return principalOf(c), nil
}

// Login проверяет пароль и выпускает JWT для субъекта.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, models.Principal, error) {
	const op = "services.AuthService.Login"

	c, err := s.creds.GetCredentialsByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrUserNotFound) {
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(c.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}

	p := principalOf(*c)
	token, err := s.jwtMaker.GenerateToken(p)
	if err != nil {
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, p, nil
}

// ValidateToken проверяет JWT и возвращает записанного в нём субъекта.
func (s *AuthService) ValidateToken(_ context.Context, token string) (models.Principal, error) {
	const op = "services.AuthService.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return claims.Principal(), nil
}

func principalOf(c models.Credentials) models.Principal {
	return models.Principal{
		UID:         c.UID,
		Email:       c.Email,
		Role:        c.Role,
		DisplayName: c.DisplayName,
		Region:      c.Region,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
