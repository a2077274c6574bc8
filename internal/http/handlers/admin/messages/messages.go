// Package messages отдаёт обращения со страницы контактов.
package messages

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crimewatch/internal/http/response"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

type Service interface {
	ListMessages(ctx context.Context, status models.MessageStatus, limit, offset int) ([]*models.ContactMessage, error)
}

type Handler struct {
	log *slog.Logger
	svc Service
}

func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{
		log: log,
		svc: svc,
	}
}

// ServeHTTP godoc
// @Summary Обращения
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "new, read, replied или archived"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response{data=[]models.ContactMessage}
// @Failure 400 {object} response.ErrorResponse
// @Router /admin/messages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.messages"

	q := r.URL.Query()
	status := models.MessageStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown message status"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	list, err := h.svc.ListMessages(r.Context(), status, limit, offset)
	if err != nil {
		h.log.Error("failed to list messages",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if list == nil {
		list = []*models.ContactMessage{}
	}
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(list))
}
