// Package activate активирует тариф после подтверждённой оплаты.
// Подтверждение оплаты выполняется платёжным провайдером до вызова,
// payment_id сохраняется только в журнале.
package activate

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

// Request данные активации.
type Request struct {
	PlanID    string `json:"plan_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required,max=128"`
}

// Service активирует подписку.
type Service interface {
	ActivateSubscription(ctx context.Context, p models.Principal, planID string) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	svc      Service
	validate *validator.Validate
}

func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{
		log:      log,
		svc:      svc,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Активировать подписку
// @Tags Subscription
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Тариф и платёж"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse "Неизвестный тариф"
// @Failure 403 {object} response.ErrorResponse "Тариф не для этой роли"
// @Failure 422 {object} response.ErrorResponse
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.activate"

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

	u, err := h.svc.ActivateSubscription(r.Context(), p, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, accessservice.ErrUnknownPlan):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown plan"))
		case errors.Is(err, accessservice.ErrPlanNotAllowed):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("plan is not available for this role"))
		default:
			log.Error("failed to activate subscription", slog.String("user_uid", p.UID), sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("subscription activated",
		slog.String("user_uid", p.UID),
		slog.String("plan", req.PlanID),
		slog.String("payment_id", req.PaymentID))
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(u))
}
