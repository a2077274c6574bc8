package register

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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/crimewatch/internal/grpc/authpb"
)

type AuthClientMock struct {
	mock.Mock
}

func (m *AuthClientMock) Register(ctx context.Context, req *authpb.RegisterRequest) (*authpb.RegisterResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*authpb.RegisterResponse)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(m *AuthClientMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация с ролью по умолчанию",
			body: `{"email":"u@example.com","password":"secret1","display_name":"U"}`,
			setupMock: func(m *AuthClientMock) {
				m.On("Register", mock.Anything, &authpb.RegisterRequest{
					Email: "u@example.com", Password: "secret1", DisplayName: "U", Role: "USER",
				}).Return(&authpb.RegisterResponse{UserUID: "uid-1", Role: "USER"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"user_uid":"uid-1"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{bad`,
			setupMock:      func(_ *AuthClientMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name:           "неизвестная роль",
			body:           `{"email":"u@example.com","password":"secret1","display_name":"U","role":"ROOT"}`,
			setupMock:      func(_ *AuthClientMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Role must be one of",
		},
		{
			name:           "некорректная почта",
			body:           `{"email":"nope","password":"secret1","display_name":"U"}`,
			setupMock:      func(_ *AuthClientMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Email must be a valid email",
		},
		{
			name: "почта занята",
			body: `{"email":"u@example.com","password":"secret1","display_name":"U"}`,
			setupMock: func(m *AuthClientMock) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(nil, status.Error(codes.AlreadyExists, "exists")).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "email already registered",
		},
		{
			name: "сервис недоступен",
			body: `{"email":"u@example.com","password":"secret1","display_name":"U"}`,
			setupMock: func(m *AuthClientMock) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(nil, status.Error(codes.Unavailable, "down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "failed to register user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthClientMock)
			tt.setupMock(authMock)

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			New(newNoopLogger(), authMock).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			authMock.AssertExpectations(t)
		})
	}
}
