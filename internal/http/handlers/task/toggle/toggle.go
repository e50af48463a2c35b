// Package toggle реализует HTTP-обработчик переключения признака выполнения задачи.
package toggle

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

// Service атомарно инвертирует is_completed задачи пользователя.
type Service interface {
	ToggleTask(ctx context.Context, taskID, userID string) (*models.Task, error)
}

// Handler обрабатывает переключение задачи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Переключить выполнение задачи
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID задачи"
// @Success 200 {object} response.Response{data=map[string]models.Task}
// @Failure 403 {object} response.ErrorResponse "Задача чужого проекта"
// @Failure 404 {object} response.ErrorResponse "Задача не найдена"
// @Router /tasks/{id}/complete [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.toggle"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	task, err := h.service.ToggleTask(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		log.Info("failed to toggle task", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("task toggled", slog.String("task_id", task.ID), slog.Bool("is_completed", task.IsCompleted))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"task": task,
	}))
}
