package checkout

import (
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

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCheckoutSession(ctx context.Context, userID string) (*models.CheckoutSession, error) {
	args := m.Called(ctx, userID)
	if res := args.Get(0); res != nil {
		return res.(*models.CheckoutSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCheckoutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		sess           *models.CheckoutSession
		mockErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "сессия создана",
			sess:           &models.CheckoutSession{SessionID: "cs_1", CheckoutURL: "https://checkout.stripe.com/c/cs_1"},
			expectedStatus: http.StatusOK,
			expectedBody:   `"checkout_url":"https://checkout.stripe.com/c/cs_1"`,
		},
		{
			name:           "подписка уже активна",
			mockErr:        fmt.Errorf("op: %w", models.ErrConflict),
			expectedStatus: http.StatusConflict,
			expectedBody:   "conflict",
		},
		{
			name:           "ошибка Stripe",
			mockErr:        errors.New("stripe: api key invalid"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.sess != nil {
				svc.On("CreateCheckoutSession", mock.Anything, "user-1").Return(tt.sess, nil)
			} else {
				svc.On("CreateCheckoutSession", mock.Anything, "user-1").Return(nil, tt.mockErr)
			}

			req := httptest.NewRequest(http.MethodPost, "/stripe/create-checkout-session", nil)
			req = req.WithContext(middlewarectx.WithUser(req.Context(), "user-1"))
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			assert.NotContains(t, w.Body.String(), "api key")
		})
	}
}
