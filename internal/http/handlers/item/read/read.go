// Package read реализует HTTP-обработчик получения элемента обратной связи по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/http/response"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// Service возвращает элемент.
type Service interface {
	Get(ctx context.Context, id string) (*models.Item, error)
}

// Handler обрабатывает чтение элемента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить элемент обратной связи
// @Tags Feedback
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID элемента"
// @Success 200 {object} response.Response{data=map[string]models.Item}
// @Failure 404 {object} response.ErrorResponse
// @Router /feedback/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.item.read"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if _, ok := middlewarectx.RequireUser(w, r); !ok {
		return
	}

	item, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Info("failed to read item", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"item": item,
	}))
}
