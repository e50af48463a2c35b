// Package listbyinput реализует HTTP-обработчик списка задач одного отзыва.
package listbyinput

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

// Service описывает чтение списка.
type Service interface {
	ListTasksForFeedback(ctx context.Context, id, userID string) ([]*models.Task, error)
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
// @Summary Задачи отзыва
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} response.Response{data=map[string][]models.Task}
// @Failure 404 {object} response.ErrorResponse
// @Router /feedback-inputs/{id}/tasks [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.listbyinput"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	res, err := h.service.ListTasksForFeedback(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		log.Info("failed to list tasks", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tasks": res,
	}))
}
