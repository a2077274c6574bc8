package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/crimewatch/internal/grpc/authpb"
	"github.com/magabrotheeeer/crimewatch/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// Mock for AuthClient
type AuthClientMock struct {
	mock.Mock
}

func (m *AuthClientMock) ValidateToken(ctx context.Context, token string) (*authpb.ValidateTokenResponse, error) {
	args := m.Called(ctx, token)
	resp, _ := args.Get(0).(*authpb.ValidateTokenResponse)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	authMock := new(AuthClientMock)
	logger := newNoopLogger()

	var gotPrincipal models.Principal
	handlerCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		gotPrincipal, _ = middlewarectx.PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := middlewarectx.JWTMiddleware(authMock, logger)(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		mockResp       *authpb.ValidateTokenResponse
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token validation error",
			authHeader:     "Bearer token",
			mockErr:        errors.New("some grpc error"),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token invalid",
			authHeader:     "Bearer token",
			mockResp:       &authpb.ValidateTokenResponse{Valid: false},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token with unknown role",
			authHeader:     "Bearer oldtoken",
			mockResp:       &authpb.ValidateTokenResponse{Valid: true, UserUID: "uid-1", Role: "user"},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer validtoken",
			mockResp: &authpb.ValidateTokenResponse{
				Valid: true, UserUID: "uid-1", Email: "a@example.com", Role: "ADMIN", Region: "Goa",
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			gotPrincipal = models.Principal{}
			authMock.ExpectedCalls = nil
			authMock.Calls = nil
			if tt.mockResp != nil || tt.mockErr != nil {
				authMock.On("ValidateToken", mock.Anything, strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockResp, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			if tt.wantCalled {
				assert.Equal(t, models.Principal{
					UID: "uid-1", Email: "a@example.com", Role: models.RoleAdmin, Region: "Goa",
				}, gotPrincipal)
			}
			authMock.AssertExpectations(t)
		})
	}
}
