package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/http/response"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// AccessChecker вычисляет решение о доступе по свежей записи субъекта.
type AccessChecker interface {
	CheckAccess(ctx context.Context, p models.Principal) (*models.User, access.Result, error)
}

// UserFrom возвращает запись, прочитанную AccessGuard.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(UserKey).(*models.User)
	return u, ok && u != nil
}

// AccessGuard пропускает запрос только при положительном решении о доступе.
// Отказ переводится в HTTP-статус через response.Denied.
func AccessGuard(checker AccessChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AccessGuard"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			p, ok := PrincipalFrom(r.Context())
			if !ok {
				status, body := response.Denied(access.Result{Reason: access.ReasonNotAuthenticated})
				w.WriteHeader(status)
				render.JSON(w, r, body)
				return
			}

			u, res, err := checker.CheckAccess(r.Context(), p)
			if err != nil {
				log.Error("failed to check access", slog.String("user_uid", p.UID), sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if !res.Valid {
				log.Info("access denied", slog.String("user_uid", p.UID), slog.String("reason", string(res.Reason)))
				status, body := response.Denied(res)
				w.WriteHeader(status)
				render.JSON(w, r, body)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles пропускает запрос, если роль записи входит в allowed.
// Ставится после AccessGuard.
func RequireRoles(log *slog.Logger, allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFrom(r.Context())
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}
			if !slices.Contains(allowed, u.Role) {
				log.Warn("role not allowed",
					slog.String("user_uid", u.UID),
					slog.String("role", string(u.Role)),
					slog.String("request_id", middleware.GetReqID(r.Context())))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
