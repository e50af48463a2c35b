package listbyproject

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListTasksForProject(ctx context.Context, id, userID string) ([]*models.Task, error) {
	args := m.Called(ctx, id, userID)
	if res := args.Get(0); res != nil {
		return res.([]*models.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func newRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/projects/"+id+"/tasks", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middlewarectx.WithUser(ctx, "user-1"))
}

func TestListByProjectHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("задачи в порядке сервиса", func(t *testing.T) {
		svc := new(MockService)
		svc.On("ListTasksForProject", mock.Anything, "p-1", "user-1").Return([]*models.Task{
			{ID: "t-1", Position: 0}, {ID: "t-2", Position: 1},
		}, nil)

		w := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(w, newRequest("p-1"))

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Less(t, strings.Index(body, `"t-1"`), strings.Index(body, `"t-2"`))
	})

	t.Run("чужой проект", func(t *testing.T) {
		svc := new(MockService)
		svc.On("ListTasksForProject", mock.Anything, "p-2", "user-1").Return(nil, fmt.Errorf("op: %w", models.ErrNotFound))

		w := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(w, newRequest("p-2"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
