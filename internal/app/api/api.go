package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/feedbackfix/internal/cache"
	"github.com/magabrotheeeer/feedbackfix/internal/config"
	"github.com/magabrotheeeer/feedbackfix/internal/http/handlers/health"
	"github.com/magabrotheeeer/feedbackfix/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/jwt"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/password"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/metrics"
	"github.com/magabrotheeeer/feedbackfix/internal/migrations"
	"github.com/magabrotheeeer/feedbackfix/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/feedbackfix/internal/services/auth"
	billingservice "github.com/magabrotheeeer/feedbackfix/internal/services/billing"
	feedbackservice "github.com/magabrotheeeer/feedbackfix/internal/services/feedback"
	projectservice "github.com/magabrotheeeer/feedbackfix/internal/services/project"
	subscriptionservice "github.com/magabrotheeeer/feedbackfix/internal/services/subscription"
	translationservice "github.com/magabrotheeeer/feedbackfix/internal/services/translation"
	usageservice "github.com/magabrotheeeer/feedbackfix/internal/services/usage"
	userservice "github.com/magabrotheeeer/feedbackfix/internal/services/user"
	"github.com/magabrotheeeer/feedbackfix/internal/storage/memory"
	"github.com/magabrotheeeer/feedbackfix/internal/storage/postgresql"
	"github.com/magabrotheeeer/feedbackfix/internal/translator"
)

const shutdownTimeout = 15 * time.Second

// Store — хранилище, которое нужно всем сервисам API. Реализуется
// storage/memory и storage/postgresql.
type Store interface {
	authservice.UserRepository
	billingservice.UserRepository
	projectservice.ProjectRepository
	translationservice.Repository
	feedbackservice.ItemRepository
	usageservice.Repository
	userservice.UserRepository
	Ping(ctx context.Context) error
	Close() error
}

// Cache — кэш профилей и список отозванных токенов.
type Cache interface {
	authservice.Cache
	billingservice.Cache
	userservice.Cache
	Ping(ctx context.Context) error
	Close() error
}

// App — HTTP API вместе с его зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	store  Store
	cache  Cache
	amqp   *amqp.Connection
}

// New подключает хранилище, кэш и брокер по конфигу и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.api.New"

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var appCache Cache = cache.Noop{}
	if cfg.RedisConnection.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		appCache = redisCache
	} else {
		logger.Warn("redis is not configured, cache and token revocation are disabled")
	}

	app := &App{logger: logger, store: store, cache: appCache}

	var publisher translationservice.Publisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqp = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.ExchangeEvents, rabbitmq.GetEventQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = rabbitmq.NewPublisher(ch, rabbitmq.ExchangeEvents)
	} else {
		logger.Warn("rabbitmq is not configured, events are not published")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	services := NewServices(cfg, store, appCache, publisher, m, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:         logger,
		Metrics:        m,
		Registry:       registry,
		Limiter:        middlewarectx.NewRateLimiter(cfg.RateLimit),
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
		Health:         map[string]health.Pinger{"storage": store, "cache": appCache},
	}, services)

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP + cfg.Translator.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

// NewServices собирает сервисы поверх общих хранилища и кэша. publisher может быть nil.
func NewServices(cfg *config.Config, store Store, c Cache, publisher translationservice.Publisher,
	m *metrics.Metrics, logger *slog.Logger) Services {
	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	gate := subscriptionservice.NewGate(store)

	return Services{
		Auth:     authservice.NewAuthService(store, password.New(bcrypt.DefaultCost), jwtMaker, c, logger),
		Projects: projectservice.NewProjectService(store, logger),
		Translation: translationservice.NewTranslationService(
			store,
			translator.New(cfg.Translator, m, logger),
			gate,
			publisher,
			cfg.Translator.Timeout,
			logger,
		),
		Feedback: feedbackservice.NewFeedbackService(store, logger),
		Billing:  billingservice.NewBillingService(store, paymentprovider.NewClient(cfg.Stripe, nil), c, logger),
		Usage:    usageservice.NewUsageService(store, logger),
		Users:    userservice.NewUserService(store, c, logger),
	}
}

// OpenStore возвращает хранилище в памяти, если строка подключения пуста,
// иначе подключается к PostgreSQL и применяет миграции.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	const op = "app.api.OpenStore"
	if cfg.InMemory() {
		logger.Warn("storage_connection_string is empty, using in-memory storage")
		return memory.New(), nil
	}

	db, err := postgresql.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return db, nil
}

// Handler возвращает корневой обработчик, нужен в тестах.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
