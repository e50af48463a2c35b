// Package api собирает HTTP API FeedbackFix: хранилище, кэш, брокер, сервисы и маршруты.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Сгенерированная документация Swagger.
	_ "github.com/magabrotheeeer/feedbackfix/docs"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/billing/webhook"
	feedbackinputlist "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/feedbackinput/list"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/health"
	itemcreate "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/item/create"
	itemlist "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/item/list"
	itemread "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/item/read"
	itemremove "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/item/remove"
	itemupdate "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/item/update"
	projectcreate "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/project/create"
	projectlist "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/project/list"
	projectread "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/project/read"
	projectremove "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/project/remove"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/task/listbyinput"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/task/listbyproject"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/task/toggle"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/translate"
	usagelist "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/usage/list"
	userlist "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/user/list"
	userread "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/user/read"
	userremove "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/user/remove"
	userupdate "github.com/magabrotheeeer/feedbackfix/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/metrics"
	authservice "github.com/magabrotheeeer/feedbackfix/internal/services/auth"
	billingservice "github.com/magabrotheeeer/feedbackfix/internal/services/billing"
	feedbackservice "github.com/magabrotheeeer/feedbackfix/internal/services/feedback"
	projectservice "github.com/magabrotheeeer/feedbackfix/internal/services/project"
	translationservice "github.com/magabrotheeeer/feedbackfix/internal/services/translation"
	usageservice "github.com/magabrotheeeer/feedbackfix/internal/services/usage"
	userservice "github.com/magabrotheeeer/feedbackfix/internal/services/user"
)

// Services — сервисы, которые обслуживают маршруты.
type Services struct {
	Auth        *authservice.AuthService
	Projects    *projectservice.ProjectService
	Translation *translationservice.TranslationService
	Feedback    *feedbackservice.FeedbackService
	Billing     *billingservice.BillingService
	Usage       *usageservice.UsageService
	Users       *userservice.UserService
}

// Deps — инфраструктура, общая для всех маршрутов.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Registry       *prometheus.Registry
	Limiter        *middlewarectx.RateLimiter
	AllowedOrigins []string
	Health         map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps, s Services) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Metrics(d.Metrics),
		cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/stripe/webhook", webhook.New(logger, s.Billing).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))

			r.Get("/auth/me", me.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/logout", logout.New(logger, s.Auth).ServeHTTP)

			r.Get("/users", userlist.New(logger, s.Users).ServeHTTP)
			r.Get("/users/{id}", userread.New(logger, s.Users).ServeHTTP)
			r.Put("/users/{id}", userupdate.New(logger, s.Users).ServeHTTP)
			r.Delete("/users/{id}", userremove.New(logger, s.Users).ServeHTTP)

			r.Post("/projects", projectcreate.New(logger, s.Projects).ServeHTTP)
			r.Get("/projects", projectlist.New(logger, s.Projects).ServeHTTP)
			r.Get("/projects/{id}", projectread.New(logger, s.Projects).ServeHTTP)
			r.Delete("/projects/{id}", projectremove.New(logger, s.Projects).ServeHTTP)
			r.Get("/projects/{id}/tasks", listbyproject.New(logger, s.Translation).ServeHTTP)
			r.Get("/projects/{id}/feedback-inputs", feedbackinputlist.New(logger, s.Translation).ServeHTTP)
			r.Get("/feedback-inputs/{id}/tasks", listbyinput.New(logger, s.Translation).ServeHTTP)
			r.Patch("/tasks/{id}/complete", toggle.New(logger, s.Translation).ServeHTTP)

			r.With(d.Limiter.Middleware(logger)).
				Post("/translate", translate.New(logger, s.Translation).ServeHTTP)

			r.Post("/feedback", itemcreate.New(logger, s.Feedback).ServeHTTP)
			r.Get("/feedback", itemlist.New(logger, s.Feedback).ServeHTTP)
			r.Get("/feedback/{id}", itemread.New(logger, s.Feedback).ServeHTTP)
			r.Put("/feedback/{id}", itemupdate.New(logger, s.Feedback).ServeHTTP)
			r.Delete("/feedback/{id}", itemremove.New(logger, s.Feedback).ServeHTTP)

			r.Post("/stripe/create-checkout-session", checkout.New(logger, s.Billing).ServeHTTP)
			r.Get("/usage", usagelist.New(logger, s.Usage).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, d.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
