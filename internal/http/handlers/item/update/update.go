// Package update реализует HTTP-обработчик частичного обновления элемента
// обратной связи. Пустые поля запроса не меняют элемент.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/http/response"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// Request — изменяемые поля элемента.
type Request struct {
	Title       string `json:"title,omitempty" validate:"max=200"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty" validate:"max=50"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress resolved closed" example:"resolved"`
}

// Service обновляет элемент владельца.
type Service interface {
	Update(ctx context.Context, id, ownerID string, patch models.ItemPatch) (*models.Item, error)
}

// Handler обрабатывает обновление элемента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить элемент обратной связи
// @Tags Feedback
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID элемента"
// @Param request body Request true "Изменения"
// @Success 200 {object} response.Response{data=map[string]models.Item}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /feedback/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.item.update"

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
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	item, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), userID, models.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
	})
	if err != nil {
		log.Info("failed to update item", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"item": item,
	}))
}
