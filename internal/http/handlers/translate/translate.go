// Package translate реализует HTTP-обработчик перевода отзыва клиента в задачи.
//
// Проверки подписки, текста и владения проектом выполняет сервис, поэтому
// пользователь без подписки получает 402 при любом теле запроса.
package translate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/http/response"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// Request — текст отзыва и проект, к которому он относится.
type Request struct {
	ProjectID    string `json:"project_id" example:"3f1c1e0a-6b55-4a8e-9d57-0c2f5b8f9a10"`
	FeedbackText string `json:"feedback_text" example:"make it pop"`
}

// Service описывает конвейер перевода.
type Service interface {
	Translate(ctx context.Context, userID, projectID, text string) (*models.Translation, error)
}

// Handler обрабатывает запросы на перевод.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Перевести отзыв в задачи
// @Description Сохраняет отзыв и возвращает сгенерированные задачи. Требует активную подписку.
// @Tags Translate
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Отзыв"
// @Success 200 {object} response.Response{data=models.Translation}
// @Failure 400 {object} response.ErrorResponse "Пустой текст"
// @Failure 402 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 404 {object} response.ErrorResponse "Проект не найден"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 502 {object} response.ErrorResponse "Сервис перевода недоступен"
// @Router /translate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.translate"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	res, err := h.service.Translate(r.Context(), userID, req.ProjectID, req.FeedbackText)
	if err != nil {
		log.Warn("translation failed", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("feedback translated", slog.String("input_id", res.FeedbackInput.ID), slog.Int("tasks", len(res.Tasks)))
	render.JSON(w, r, response.StatusOKWithData(res))
}
