// Package premium выдаёт и снимает премиум-доступ пользователя.
//
// Один обработчик обслуживает оба метода: POST выдаёт доступ, DELETE снимает.
// Право на операцию проверяется сервисом по свежей записи вызывающего.
package premium

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crimewatch/internal/http/response"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
	"github.com/magabrotheeeer/crimewatch/internal/storage"
)

// Service меняет премиум-флаг пользователя.
type Service interface {
	GrantPremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error)
	RevokePremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error)
}

type Handler struct {
	log   *slog.Logger
	svc   Service
	grant bool
}

// New создает обработчик выдачи (grant=true) или снятия премиум-доступа.
func New(log *slog.Logger, svc Service, grant bool) *Handler {
	return &Handler{
		log:   log,
		svc:   svc,
		grant: grant,
	}
}

// ServeHTTP godoc
// @Summary Выдать или снять премиум-доступ
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "uid пользователя"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/users/{id}/premium [post]
// @Router /admin/users/{id}/premium [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.premium"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}
	targetUID := chi.URLParam(r, "id")
	if targetUID == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user id is required"))
		return
	}

	var (
		u   *models.User
		err error
	)
	if h.grant {
		u, err = h.svc.GrantPremium(r.Context(), actor, targetUID)
	} else {
		u, err = h.svc.RevokePremium(r.Context(), actor, targetUID)
	}
	if err != nil {
		switch {
		case errors.Is(err, access.ErrUnauthorized):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only super admin can change premium access"))
		case errors.Is(err, storage.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to change premium", slog.String("target_uid", targetUID), sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(u))
}
