// Package checkout реализует HTTP-обработчик создания сессии оплаты подписки.
package checkout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/http/response"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// Service создаёт сессию оплаты.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userID string) (*models.CheckoutSession, error)
}

// Handler обрабатывает запрос на оплату.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создать сессию оплаты
// @Description Создаёт сессию Stripe Checkout для подписки текущего пользователя.
// @Tags Billing
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.CheckoutSession}
// @Failure 409 {object} response.ErrorResponse "Подписка уже активна"
// @Router /stripe/create-checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	sess, err := h.service.CreateCheckoutSession(r.Context(), userID)
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(sess))
}
