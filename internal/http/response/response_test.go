package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{models.ErrValidation, http.StatusBadRequest, "validation error"},
		{models.ErrConflict, http.StatusConflict, "conflict"},
		{models.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{models.ErrForbidden, http.StatusForbidden, "forbidden"},
		{models.ErrNotFound, http.StatusNotFound, "not found"},
		{models.ErrPaymentRequired, http.StatusPaymentRequired, "payment required"},
		{models.ErrTranslation, http.StatusBadGateway, "translation failed"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			wrapped := fmt.Errorf("services.x.Op: %w", tt.err)
			assert.Equal(t, tt.code, StatusCode(wrapped))
			assert.Equal(t, tt.msg, Message(wrapped))
		})
	}
}

func TestWriteError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	WriteError(w, r, fmt.Errorf("op: %w", models.ErrPaymentRequired))

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Status: StatusError, Error: "payment required"}, body)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		Name     string `json:"name" validate:"max=3"`
	}
	err := validator.New().Struct(request{Email: "not-an-email", Password: "123", Name: "toolong"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Password must be at least 6 characters")
	assert.Contains(t, resp.Error, "field Name must be at most 3 characters")
}
