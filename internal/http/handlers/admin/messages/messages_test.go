package messages

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/crimewatch/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListMessages(ctx context.Context, status models.MessageStatus, limit, offset int) ([]*models.ContactMessage, error) {
	args := m.Called(ctx, status, limit, offset)
	list, _ := args.Get(0).([]*models.ContactMessage)
	return list, args.Error(1)
}

func TestMessagesHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("новые обращения", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListMessages", mock.Anything, models.MessageNew, 5, 0).
			Return([]*models.ContactMessage{{ID: "m-1", Status: models.MessageNew}}, nil).Once()

		w := httptest.NewRecorder()
		New(log, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/messages?status=new&limit=5", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"m-1"`)
		svc.AssertExpectations(t)
	})

	t.Run("неизвестный статус", func(t *testing.T) {
		w := httptest.NewRecorder()
		New(log, new(ServiceMock)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/messages?status=spam", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
