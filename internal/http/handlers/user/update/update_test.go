package update

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, callerID, id, name, email string) (*models.PublicUser, error) {
	args := m.Called(ctx, callerID, id, name, email)
	if res := args.Get(0); res != nil {
		return res.(*models.PublicUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		target         string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "смена email",
			target: "user-1",
			body:   `{"email":"New@Example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "user-1", "user-1", "", "New@Example.com").
					Return(&models.PublicUser{ID: "user-1", Email: "new@example.com"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"email":"new@example.com"`,
		},
		{
			name:           "некорректный email",
			target:         "user-1",
			body:           `{"email":"nope"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "field Email must be a valid email",
		},
		{
			name:           "некорректное тело",
			target:         "user-1",
			body:           `{`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name:   "чужая учётная запись",
			target: "user-2",
			body:   `{"name":"Mallory"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "user-1", "user-2", "Mallory", "").
					Return(nil, fmt.Errorf("op: %w", models.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "forbidden",
		},
		{
			name:   "email занят",
			target: "user-1",
			body:   `{"email":"taken@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "user-1", "user-1", "", "taken@example.com").
					Return(nil, fmt.Errorf("op: %w", models.ErrConflict))
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/users/"+tt.target, bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.target)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithUser(ctx, "user-1"))

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
