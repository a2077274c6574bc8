// Package middlewarectx содержит HTTP middleware для аутентификации,
// проверки доступа, ролей и ограничения частоты запросов.
//
// JWTMiddleware проверяет JWT токен из заголовка Authorization через gRPC-сервис
// и кладёт субъекта в контекст. AccessGuard вычисляет решение о доступе по свежей
// записи, RequireRoles проверяет роль записи после AccessGuard.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crimewatch/internal/grpc/authpb"
	"github.com/magabrotheeeer/crimewatch/internal/http/response"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// PrincipalKey ключ субъекта из токена
	PrincipalKey Key = "principal"
	// UserKey ключ записи пользователя, прочитанной AccessGuard
	UserKey Key = "user"
)

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*authpb.ValidateTokenResponse, error)
}

// PrincipalFrom возвращает субъекта из контекста запроса.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	return p, ok && p.UID != ""
}

// WithPrincipal кладёт субъекта в контекст.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет субъекта в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(authClient Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			resp, err := authClient.ValidateToken(r.Context(), tokenStr)
			if err != nil || resp == nil || !resp.Valid || resp.UserUID == "" {
				log.Warn("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			role, err := models.ParseRole(resp.Role)
			if err != nil {
				log.Warn("token carries unknown role", slog.String("user_uid", resp.UserUID), sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			p := models.Principal{
				UID:         resp.UserUID,
				Email:       resp.Email,
				Role:        role,
				DisplayName: resp.DisplayName,
				Region:      resp.Region,
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
