// Package dashboard собирает HTTP API дашборда: маршруты, зависимости и сервер.
package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/access/status"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/account/preferences"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/account/profile"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/admin/accessflag"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/admin/messages"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/admin/messagestatus"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/admin/premium"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/admin/stats"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/admin/users"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/contact/submit"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/dashboard/filters"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/health"
	"github.com/magabrotheeeer/crimewatch/internal/http/handlers/subscription/activate"
	"github.com/magabrotheeeer/crimewatch/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// AuthClient клиент сервиса идентификации.
type AuthClient interface {
	register.Service
	login.Service
	middlewarectx.Service
}

// AccessService операции доступа над записью пользователя.
type AccessService interface {
	status.Service
	profile.Service
	preferences.Service
	filters.Service
	activate.Service
	premium.Service
	accessflag.Service
}

// AdminService выборки панели суперадминистратора.
type AdminService interface {
	users.Service
	stats.Service
	messages.Service
	messagestatus.Service
}

// Deps зависимости маршрутов.
type Deps struct {
	Auth      AuthClient
	Access    AccessService
	Admin     AdminService
	Contact   submit.Service
	DB        health.Pinger
	RateLimit float64
	RateBurst int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, d.DB).ServeHTTP)
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, d.RateLimit, d.RateBurst))
			r.Post("/register", register.New(logger, d.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, d.Auth).ServeHTTP)
			r.Post("/contact", submit.New(logger, d.Contact).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, d.RateLimit, d.RateBurst))

			r.Get("/access", status.New(logger, d.Access).ServeHTTP)
			r.Get("/me", profile.New(logger, d.Access).ServeHTTP)
			r.Put("/me/preferences", preferences.New(logger, d.Access).ServeHTTP)
			r.Post("/subscriptions", activate.New(logger, d.Access).ServeHTTP)

			// Действия дашборда требуют положительного решения о доступе
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AccessGuard(d.Access, logger))
				r.Post("/dashboard/filters", filters.New(logger, d.Access).ServeHTTP)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AccessGuard(d.Access, logger))
				r.Use(middlewarectx.RequireRoles(logger, models.RoleSuperAdmin))

				r.Get("/users", users.New(logger, d.Admin).ServeHTTP)
				r.Get("/stats", stats.New(logger, d.Admin).ServeHTTP)
				r.Post("/users/{id}/premium", premium.New(logger, d.Access, true).ServeHTTP)
				r.Delete("/users/{id}/premium", premium.New(logger, d.Access, false).ServeHTTP)
				r.Put("/users/{id}/access", accessflag.New(logger, d.Access).ServeHTTP)
				r.Get("/messages", messages.New(logger, d.Admin).ServeHTTP)
				r.Put("/messages/{id}/status", messagestatus.New(logger, d.Admin).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
