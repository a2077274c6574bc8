package filters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crimewatch/internal/models"
	accessservice "github.com/magabrotheeeer/crimewatch/internal/services/access"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ApplyFilter(ctx context.Context, p models.Principal, actionID, state string) (accessservice.FilterOutcome, error) {
	args := m.Called(ctx, p, actionID, state)
	return args.Get(0).(accessservice.FilterOutcome), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestFiltersHandler(t *testing.T) {
	p := models.Principal{UID: "uid-1", Role: models.RoleUser}

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *ServiceMock)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "первое применение списывает попытку",
			body: `{"action_id":"a-1","state":"Kerala"}`,
			setupMock: func(m *ServiceMock) {
				m.On("ApplyFilter", mock.Anything, p, "a-1", "Kerala").Return(accessservice.FilterOutcome{
					Access:  access.Result{Valid: true},
					Debited: true,
					User:    &models.User{UID: "uid-1", TrialsRemaining: 2},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"debited":true`, `"trials_remaining":2`},
		},
		{
			name: "повтор действия",
			body: `{"action_id":"a-1","state":"Kerala"}`,
			setupMock: func(m *ServiceMock) {
				m.On("ApplyFilter", mock.Anything, p, "a-1", "Kerala").Return(accessservice.FilterOutcome{
					Access:    access.Result{Valid: true},
					Duplicate: true,
					User:      &models.User{UID: "uid-1", TrialsRemaining: 2},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"debited":false`, `"duplicate":true`},
		},
		{
			name: "попытки исчерпаны",
			body: `{"action_id":"a-4","state":"Goa"}`,
			setupMock: func(m *ServiceMock) {
				m.On("ApplyFilter", mock.Anything, p, "a-4", "Goa").Return(accessservice.FilterOutcome{
					Access: access.Result{Reason: access.ReasonTrialsExhausted},
				}, nil).Once()
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   []string{`"reason":"trials_exhausted"`, `"redirect":"/pricing"`},
		},
		{
			name: "все штаты",
			body: `{"action_id":"a-5","state":"all"}`,
			setupMock: func(m *ServiceMock) {
				m.On("ApplyFilter", mock.Anything, p, "a-5", "all").
					Return(accessservice.FilterOutcome{}, fmt.Errorf("op: %w", accessservice.ErrStateRequired)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"a concrete state must be selected"},
		},
		{
			name:           "нет идентификатора действия",
			body:           `{"state":"Goa"}`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"field ActionID is a required field"},
		},
		{
			name: "ошибка хранилища",
			body: `{"action_id":"a-6","state":"Goa"}`,
			setupMock: func(m *ServiceMock) {
				m.On("ApplyFilter", mock.Anything, p, "a-6", "Goa").
					Return(accessservice.FilterOutcome{}, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{"internal service error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/dashboard/filters", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), p))
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, s := range tt.expectedBody {
				assert.Contains(t, w.Body.String(), s)
			}
			svc.AssertExpectations(t)
		})
	}
}
