package logout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/jwt"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Logout(ctx context.Context, claims *jwt.CustomClaims) error {
	return m.Called(ctx, claims).Error(0)
}

func request(claims *jwt.CustomClaims) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	if claims != nil {
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Claims, claims))
	}
	return req
}

func TestLogoutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	claims := &jwt.CustomClaims{UserID: "user-1"}

	tests := []struct {
		name       string
		claims     *jwt.CustomClaims
		mockErr    error
		callsMock  bool
		wantStatus int
	}{
		{name: "revokes token", claims: claims, callsMock: true, wantStatus: http.StatusOK},
		{name: "cache failure", claims: claims, callsMock: true, mockErr: errors.New("redis down"), wantStatus: http.StatusInternalServerError},
		{name: "no claims", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callsMock {
				svc.On("Logout", mock.Anything, tt.claims).Return(tt.mockErr).Once()
			}
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, request(tt.claims))

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
