package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
)

type observation struct {
	route  string
	method string
	code   int
}

type recorder struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recorder) ObserveHTTP(route, method string, code int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{route, method, code})
}

func TestMetrics(t *testing.T) {
	rec := &recorder{}
	router := chi.NewRouter()
	router.Use(middlewarectx.Metrics(rec))
	router.Get("/projects/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/projects/abc", "/health"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, rec.seen, 2)
	assert.Equal(t, observation{"/projects/{id}", http.MethodGet, http.StatusNotFound}, rec.seen[0])
	assert.Equal(t, observation{"/health", http.MethodGet, http.StatusOK}, rec.seen[1])
}
