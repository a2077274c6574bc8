// Package status отдаёт текущее решение о доступе к дашборду.
//
// Ответ всегда 200: отказ тоже является состоянием, которое фронтенд
// показывает пользователю (причина и, при исчерпании попыток, переход к тарифам).
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crimewatch/internal/http/response"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// Service вычисляет решение о доступе.
type Service interface {
	CheckAccess(ctx context.Context, p models.Principal) (*models.User, access.Result, error)
}

// Result тело ответа.
type Result struct {
	Valid    bool          `json:"valid"`
	Reason   access.Reason `json:"reason"`
	Redirect string        `json:"redirect,omitempty"`
	User     *models.User  `json:"user,omitempty"`
}

// Handler обрабатывает запрос состояния доступа.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{
		log: log,
		svc: svc,
	}
}

// ServeHTTP godoc
// @Summary Состояние доступа
// @Description Возвращает решение о доступе к дашборду по свежей записи пользователя.
// @Tags Access
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=Result}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	u, res, err := h.svc.CheckAccess(r.Context(), p)
	if err != nil {
		log.Error("failed to check access", slog.String("user_uid", p.UID), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	out := Result{Valid: res.Valid, Reason: res.Reason, User: u}
	if res.Reason == access.ReasonTrialsExhausted {
		out.Redirect = response.PricingPath
	}
	log.Debug("access checked", slog.String("user_uid", p.UID), slog.Bool("valid", res.Valid))
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(out))
}
