// Package list реализует HTTP-обработчик списка элементов обратной связи
// с фильтрами category и status.
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

// Service возвращает элементы.
type Service interface {
	List(ctx context.Context, filter models.ItemFilter) ([]*models.Item, error)
}

// Handler обрабатывает запрос списка.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список элементов обратной связи
// @Tags Feedback
// @Produce  json
// @Security BearerAuth
// @Param category query string false "Точное совпадение категории"
// @Param status query string false "Точное совпадение статуса"
// @Success 200 {object} response.Response{data=map[string][]models.Item}
// @Router /feedback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.item.list"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if _, ok := middlewarectx.RequireUser(w, r); !ok {
		return
	}

	q := r.URL.Query()
	items, err := h.service.List(r.Context(), models.ItemFilter{
		Category: q.Get("category"),
		Status:   q.Get("status"),
	})
	if err != nil {
		log.Error("failed to list items", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"items": items,
	}))
}
