// Package filters обрабатывает явное применение фильтра по штату.
//
// Каждое применение несёт идентификатор действия. Повтор того же действия
// (повторная отправка, ретрай клиента) не списывает пробное использование
// второй раз. Выбор «все штаты» применением не считается.
package filters

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/crimewatch/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crimewatch/internal/http/response"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
	accessservice "github.com/magabrotheeeer/crimewatch/internal/services/access"
)

// Request применение фильтра.
type Request struct {
	ActionID string `json:"action_id" validate:"required,max=128"`
	State    string `json:"state" validate:"required,max=64"`
}

// Result тело успешного ответа.
type Result struct {
	Debited         bool   `json:"debited"`
	Duplicate       bool   `json:"duplicate"`
	TrialsRemaining int    `json:"trials_remaining"`
	State           string `json:"state"`
}

// Service применяет фильтр.
type Service interface {
	ApplyFilter(ctx context.Context, p models.Principal, actionID, state string) (accessservice.FilterOutcome, error)
}

// Handler обрабатывает применение фильтра.
type Handler struct {
	log      *slog.Logger
	svc      Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{
		log:      log,
		svc:      svc,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Применить фильтр по штату
// @Description Списывает одно пробное использование у USER без подписки. Повтор action_id не списывает повторно.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Действие"
// @Success 200 {object} response.Response{data=Result}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.DeniedResponse
// @Failure 402 {object} response.DeniedResponse "Пробные использования исчерпаны"
// @Failure 403 {object} response.DeniedResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /dashboard/filters [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.filters"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	out, err := h.svc.ApplyFilter(r.Context(), p, req.ActionID, req.State)
	if err != nil {
		switch {
		case errors.Is(err, accessservice.ErrStateRequired), errors.Is(err, accessservice.ErrActionRequired):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to apply filter", slog.String("user_uid", p.UID), sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}
	if !out.Access.Valid {
		status, body := response.Denied(out.Access)
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	res := Result{Debited: out.Debited, Duplicate: out.Duplicate, State: req.State}
	if out.User != nil {
		res.TrialsRemaining = out.User.TrialsRemaining
	}
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(res))
}
