// Package server реализует gRPC-сервер для сервиса аутентификации.
//
// AuthServer обрабатывает регистрацию, вход и валидацию JWT токенов.
// Логирует операции и ошибки, бизнес-логику делегирует AuthServiceInterface.
package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/crimewatch/internal/grpc/authpb"
	"github.com/magabrotheeeer/crimewatch/internal/lib/password"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
	services "github.com/magabrotheeeer/crimewatch/internal/services/auth"
	"github.com/magabrotheeeer/crimewatch/internal/storage"
)

// AuthServiceInterface операции сервиса аутентификации.
type AuthServiceInterface interface {
	Register(ctx context.Context, email, displayName, rawPassword string, requested models.Role, region string) (models.Principal, error)
	Login(ctx context.Context, email, rawPassword string) (string, models.Principal, error)
	ValidateToken(ctx context.Context, token string) (models.Principal, error)
}

// AuthServer реализует gRPC-сервис авторизации
type AuthServer struct {
	authpb.UnimplementedAuthServiceServer
	authService AuthServiceInterface
	log         *slog.Logger
}

// NewAuthServer создает новый экземпляр AuthServer с указанным сервисом аутентификации и логгером.
func NewAuthServer(authService AuthServiceInterface, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		authService: authService,
		log:         logger,
	}
}

// Register создает учётную запись
func (s *AuthServer) Register(ctx context.Context, req *authpb.RegisterRequest) (*authpb.RegisterResponse, error) {
	s.log.Info("Register request", slog.String("email", req.Email), slog.String("role", req.Role))

	p, err := s.authService.Register(ctx, req.Email, req.DisplayName, req.Password, models.Role(req.Role), req.Region)
	if err != nil {
		s.log.Error("Register failed", slog.String("email", req.Email), sl.Err(err))
		switch {
		case errors.Is(err, storage.ErrUserExists):
			return nil, status.Error(codes.AlreadyExists, "email already registered")
		case errors.Is(err, password.ErrTooShort):
			return nil, status.Error(codes.InvalidArgument, "password is too short")
		default:
			return nil, status.Error(codes.Internal, "registration failed")
		}
	}
	return &authpb.RegisterResponse{
		UserUID: p.UID,
		Role:    string(p.Role),
	}, nil
}

// Login проверяет пароль и выпускает JWT
func (s *AuthServer) Login(ctx context.Context, req *authpb.LoginRequest) (*authpb.LoginResponse, error) {
	s.log.Info("Login request", slog.String("email", req.Email))

	token, p, err := s.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.log.Error("Login failed", slog.String("email", req.Email), sl.Err(err))
		if errors.Is(err, services.ErrInvalidCredentials) {
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}
		return nil, status.Error(codes.Internal, "login failed")
	}

	return &authpb.LoginResponse{
		Token:       token,
		UserUID:     p.UID,
		Role:        string(p.Role),
		DisplayName: p.DisplayName,
	}, nil
}

// ValidateToken проверяет JWT и возвращает субъекта
func (s *AuthServer) ValidateToken(ctx context.Context, req *authpb.ValidateTokenRequest) (*authpb.ValidateTokenResponse, error) {
	p, err := s.authService.ValidateToken(ctx, req.Token)
	if err != nil {
		s.log.Warn("Invalid token", sl.Err(err))
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return &authpb.ValidateTokenResponse{
		Valid:       true,
		UserUID:     p.UID,
		Email:       p.Email,
		Role:        string(p.Role),
		DisplayName: p.DisplayName,
		Region:      p.Region,
	}, nil
}
