package accessflag

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) SetAccessEnabled(ctx context.Context, actor models.Principal, targetUID string, enabled bool) (*models.User, error) {
	args := m.Called(ctx, actor, targetUID, enabled)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func TestAccessFlagHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := models.Principal{UID: "root", Role: models.RoleSuperAdmin}

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *ServiceMock)
		expectedStatus int
	}{
		{
			name: "включение",
			body: `{"enabled":true}`,
			setupMock: func(m *ServiceMock) {
				m.On("SetAccessEnabled", mock.Anything, actor, "adm-1", true).
					Return(&models.User{UID: "adm-1", AccessEnabled: true}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "выключение",
			body: `{"enabled":false}`,
			setupMock: func(m *ServiceMock) {
				m.On("SetAccessEnabled", mock.Anything, actor, "adm-1", false).
					Return(&models.User{UID: "adm-1"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "без флага",
			body:           `{}`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "не суперадмин",
			body: `{"enabled":true}`,
			setupMock: func(m *ServiceMock) {
				m.On("SetAccessEnabled", mock.Anything, actor, "adm-1", true).
					Return(nil, fmt.Errorf("op: %w", access.ErrUnauthorized)).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/admin/users/adm-1/access", bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "adm-1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithPrincipal(ctx, actor))
			w := httptest.NewRecorder()

			New(log, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
