package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedbackfix/internal/cache"
	"github.com/magabrotheeeer/feedbackfix/internal/config"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/health"
	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/metrics"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
	"github.com/magabrotheeeer/feedbackfix/internal/storage/memory"
)

const tasksJSON = `{"tasks":[` +
	`{"task":"Increase headline contrast","estimated_time_minutes":20,"difficulty_level":"easy"},` +
	`{"task":"Add an accent colour to the CTA","estimated_time_minutes":30,"difficulty_level":"medium"}]}`

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	srv    *httptest.Server
	store  *memory.Storage
	calls  atomic.Int32
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ta := &testAPI{t: t, store: memory.New()}

	ta.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ta.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": tasksJSON},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(ta.srv.Close)

	cfg := &config.Config{
		JWTToken: config.JWTToken{JWTSecretKey: "test-secret", TokenTTL: time.Hour},
		Translator: config.Translator{
			APIKey:  "test",
			BaseURL: ta.srv.URL + "/v1",
			Model:   "gpt-4o-mini",
			Timeout: 5 * time.Second,
		},
		RateLimit: config.RateLimit{RequestsPerMinute: 600, Burst: 10},
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:         logger,
		Metrics:        m,
		Registry:       registry,
		Limiter:        middlewarectx.NewRateLimiter(cfg.RateLimit),
		AllowedOrigins: []string{"*"},
		Health:         map[string]health.Pinger{"storage": ta.store, "cache": cache.Noop{}},
	}, NewServices(cfg, ta.store, cache.Noop{}, nil, m, logger))
	ta.router = router
	return ta
}

func (ta *testAPI) do(method, path, token string, body any) (int, envelope) {
	ta.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ta.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(ta.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (ta *testAPI) register(email string) (token, userID string) {
	ta.t.Helper()
	code, env := ta.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "secret123", "name": "Designer",
	})
	require.Equal(ta.t, http.StatusCreated, code, env.Error)
	var res struct {
		User  models.PublicUser `json:"user"`
		Token string            `json:"token"`
	}
	require.NoError(ta.t, json.Unmarshal(env.Data, &res))
	return res.Token, res.User.ID
}

func (ta *testAPI) createProject(token string) string {
	ta.t.Helper()
	code, env := ta.do(http.MethodPost, "/api/v1/projects", token, map[string]string{"name": "Landing"})
	require.Equal(ta.t, http.StatusCreated, code, env.Error)
	var res struct {
		Project models.Project `json:"project"`
	}
	require.NoError(ta.t, json.Unmarshal(env.Data, &res))
	return res.Project.ID
}

func TestRoutes_RegisterLoginMe(t *testing.T) {
	ta := newTestAPI(t)
	_, userID := ta.register("Alice@Example.com")

	code, env := ta.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))

	code, env = ta.do(http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var me struct {
		User models.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, userID, me.User.ID)

	code, _ = ta.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRoutes_DuplicateRegistration(t *testing.T) {
	ta := newTestAPI(t)
	ta.register("bob@example.com")

	code, env := ta.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "bob@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Error", env.Status)
}

func TestRoutes_TranslateRequiresSubscription(t *testing.T) {
	ta := newTestAPI(t)
	token, _ := ta.register("carol@example.com")
	projectID := ta.createProject(token)

	code, _ := ta.do(http.MethodPost, "/api/v1/translate", token, map[string]string{
		"project_id": projectID, "feedback_text": "make it pop",
	})
	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Zero(t, ta.calls.Load())

	code, env := ta.do(http.MethodGet, "/api/v1/projects/"+projectID+"/feedback-inputs", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"feedback_inputs"`)
}

func TestRoutes_TranslateAndToggle(t *testing.T) {
	ta := newTestAPI(t)
	token, userID := ta.register("dave@example.com")
	require.NoError(t, ta.store.SetSubscriptionStatus(context.Background(), userID, models.SubscriptionActive))
	projectID := ta.createProject(token)

	code, env := ta.do(http.MethodPost, "/api/v1/translate", token, map[string]string{
		"project_id": projectID, "feedback_text": "make it pop",
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var tr models.Translation
	require.NoError(t, json.Unmarshal(env.Data, &tr))
	assert.Equal(t, "make it pop", tr.FeedbackInput.OriginalText)
	require.Len(t, tr.Tasks, 2)
	assert.Equal(t, "Increase headline contrast", tr.Tasks[0].TaskDescription)

	code, env = ta.do(http.MethodPatch, "/api/v1/tasks/"+tr.Tasks[0].ID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var toggled struct {
		Task models.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	assert.True(t, toggled.Task.IsCompleted)

	other, _ := ta.register("eve@example.com")
	code, _ = ta.do(http.MethodPatch, "/api/v1/tasks/"+tr.Tasks[0].ID+"/complete", other, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = ta.do(http.MethodGet, "/api/v1/projects/"+projectID+"/tasks", token, nil)
	require.Equal(t, http.StatusOK, code)
	var listed struct {
		Tasks []models.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed.Tasks, 2)
	assert.True(t, listed.Tasks[0].IsCompleted)
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	ta := newTestAPI(t)

	code, _ := ta.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `feedbackfix_http_requests_total{code="200",method="GET",route="/health"}`)
}

func TestRoutes_WebhookRejectsBadSignature(t *testing.T) {
	ta := newTestAPI(t)
	code, _ := ta.do(http.MethodPost, "/api/v1/stripe/webhook", "", map[string]string{"type": "checkout.session.completed"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRoutes_FeedbackItemsReadableByAllOwnerOnlyWrites(t *testing.T) {
	ta := newTestAPI(t)
	owner, _ := ta.register("frank@example.com")
	other, _ := ta.register("grace@example.com")

	code, env := ta.do(http.MethodPost, "/api/v1/feedback", owner, map[string]string{
		"title": "Checkout is slow", "description": "Takes 10 seconds", "category": "performance",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var created struct {
		Item models.Item `json:"item"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	path := "/api/v1/feedback/" + created.Item.ID

	code, env = ta.do(http.MethodGet, "/api/v1/feedback", other, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), created.Item.ID)

	code, _ = ta.do(http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = ta.do(http.MethodPut, path, other, map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ta.do(http.MethodDelete, path, other, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ta.do(http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRoutes_UsersSelfServiceOnly(t *testing.T) {
	ta := newTestAPI(t)
	henry, henryID := ta.register("henry@example.com")
	ivy, ivyID := ta.register("ivy@example.com")

	code, env := ta.do(http.MethodGet, "/api/v1/users", ivy, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var listed struct {
		Users []models.PublicUser `json:"users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed.Users, 2)
	assert.Equal(t, henryID, listed.Users[0].ID)
	assert.NotContains(t, string(env.Data), "password")

	code, _ = ta.do(http.MethodGet, "/api/v1/users/"+henryID, ivy, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = ta.do(http.MethodPut, "/api/v1/users/"+henryID, ivy, map[string]string{"name": "Mallory"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = ta.do(http.MethodDelete, "/api/v1/users/"+henryID, ivy, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ta.do(http.MethodPut, "/api/v1/users/"+ivyID, ivy, map[string]string{"email": "Henry@Example.com"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = ta.do(http.MethodPut, "/api/v1/users/"+ivyID, ivy, map[string]string{"email": "  Ivy.New@Example.COM "})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"email":"ivy.new@example.com"`)

	code, _ = ta.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ivy.new@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, code)

	ta.createProject(henry)
	code, _ = ta.do(http.MethodDelete, "/api/v1/users/"+henryID, henry, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = ta.do(http.MethodGet, "/api/v1/users/"+henryID, ivy, nil)
	assert.Equal(t, http.StatusNotFound, code)
	projects, err := ta.store.ListProjectsByOwner(context.Background(), henryID)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
