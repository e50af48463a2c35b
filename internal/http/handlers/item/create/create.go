// Package create реализует HTTP-обработчик создания элемента обратной связи.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/http/response"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// Request — данные нового элемента. Категория по умолчанию general.
type Request struct {
	Title       string `json:"title" validate:"required,max=200" example:"Checkout is slow"`
	Description string `json:"description" validate:"required" example:"Takes 10 seconds to load"`
	Category    string `json:"category,omitempty" validate:"max=50" example:"performance"`
}

// Service создаёт элемент.
type Service interface {
	Create(ctx context.Context, ownerID, title, description, category string) (*models.Item, error)
}

// Handler обрабатывает создание элементов.
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
// @Summary Создать элемент обратной связи
// @Tags Feedback
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Элемент"
// @Success 201 {object} response.Response{data=map[string]models.Item}
// @Failure 400 {object} response.ErrorResponse
// @Router /feedback [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.item.create"

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

	item, err := h.service.Create(r.Context(), userID, req.Title, req.Description, req.Category)
	if err != nil {
		log.Error("failed to create item", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"item": item,
	}))
}
