package preferences

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/crimewatch/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) UpdatePreferences(ctx context.Context, p models.Principal, prefs models.Preferences) (*models.User, error) {
	args := m.Called(ctx, p, prefs)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func TestPreferencesHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := models.Principal{UID: "uid-1", Role: models.RoleUser}

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *ServiceMock)
		expectedStatus int
	}{
		{
			name: "сохраняет штат",
			body: `{"preferred_state":"Kerala"}`,
			setupMock: func(m *ServiceMock) {
				m.On("UpdatePreferences", mock.Anything, p, models.Preferences{PreferredState: "Kerala"}).
					Return(&models.User{UID: "uid-1", Preferences: models.Preferences{PreferredState: "Kerala"}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "некорректный JSON",
			body:           `{`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/account/preferences", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), p))
			w := httptest.NewRecorder()
			New(log, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
