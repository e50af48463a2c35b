// Package list реализует HTTP-обработчик истории обращений пользователя к переводу.
package list

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

// Service возвращает записи использования.
type Service interface {
	List(ctx context.Context, userID string) ([]*models.Usage, error)
}

// Handler обрабатывает запрос истории использования.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История использования
// @Tags Usage
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string][]models.Usage}
// @Failure 401 {object} response.ErrorResponse
// @Router /usage [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.list"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	usage, err := h.service.List(r.Context(), userID)
	if err != nil {
		log.Error("failed to list usage", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"usage": usage,
	}))
}
