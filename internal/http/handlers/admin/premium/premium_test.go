package premium

import (
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
	"github.com/magabrotheeeer/crimewatch/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GrantPremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error) {
	args := m.Called(ctx, actor, targetUID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *ServiceMock) RevokePremium(ctx context.Context, actor models.Principal, targetUID string) (*models.User, error) {
	args := m.Called(ctx, actor, targetUID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func TestPremiumHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := models.Principal{UID: "root", Role: models.RoleSuperAdmin}

	tests := []struct {
		name           string
		grant          bool
		setupMock      func(m *ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "выдача",
			grant: true,
			setupMock: func(m *ServiceMock) {
				m.On("GrantPremium", mock.Anything, actor, "u-1").
					Return(&models.User{UID: "u-1", PremiumOverride: true}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"premium_override":true`,
		},
		{
			name: "снятие",
			setupMock: func(m *ServiceMock) {
				m.On("RevokePremium", mock.Anything, actor, "u-1").
					Return(&models.User{UID: "u-1"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"premium_override":false`,
		},
		{
			name:  "вызывающий не суперадмин",
			grant: true,
			setupMock: func(m *ServiceMock) {
				m.On("GrantPremium", mock.Anything, actor, "u-1").
					Return(nil, fmt.Errorf("op: %w", access.ErrUnauthorized)).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "only super admin",
		},
		{
			name:  "нет пользователя",
			grant: true,
			setupMock: func(m *ServiceMock) {
				m.On("GrantPremium", mock.Anything, actor, "u-1").
					Return(nil, fmt.Errorf("op: %w", storage.ErrUserNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "user not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/admin/users/u-1/premium", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "u-1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithPrincipal(ctx, actor))
			w := httptest.NewRecorder()

			New(log, svc, tt.grant).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
