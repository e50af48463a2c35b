// Package worker собирает фоновый обработчик событий feedback.translated:
// запись статистики использования и отправку писем со списком задач.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/feedbackfix/internal/app/api"
	"github.com/magabrotheeeer/feedbackfix/internal/config"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/mailer"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/metrics"
	senderservice "github.com/magabrotheeeer/feedbackfix/internal/services/sender"
	usageservice "github.com/magabrotheeeer/feedbackfix/internal/services/usage"
)

// Handler обрабатывает тело одного сообщения.
type Handler func(ctx context.Context, body []byte) error

// Observer учитывает результат обработки сообщения.
type Observer interface {
	ObserveMessage(queue string, err error)
}

// App — воркер вместе с соединением с брокером и хранилищем.
type App struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	store    api.Store
	handlers map[string]Handler
	metrics  *http.Server
	logger   *slog.Logger
}

// New подключается к брокеру и хранилищу и готовит обработчики очередей.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.worker.New"
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("%s: rabbitmq url is required", op)
	}

	store, err := api.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.ExchangeEvents, rabbitmq.GetEventQueues())
	if err != nil {
		_ = conn.Close()
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	usage := usageservice.NewUsageService(store, logger)
	var digest Handler = discard(logger, rabbitmq.QueueNotificationDigest)
	if cfg.SendGrid.APIKey != "" {
		digest = senderservice.NewSenderService(mailer.NewTransport(cfg.SendGrid), logger).SendTaskDigest
	} else {
		logger.Warn("sendgrid is not configured, task digests are not sent")
	}

	return &App{
		conn:  conn,
		ch:    ch,
		store: store,
		handlers: Handlers(m, map[string]Handler{
			rabbitmq.QueueUsageRecord:        usage.Record,
			rabbitmq.QueueNotificationDigest: digest,
		}),
		metrics: &http.Server{
			Addr:              cfg.Worker.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

// Handlers оборачивает обработчики очередей учётом метрик.
func Handlers(obs Observer, handlers map[string]Handler) map[string]Handler {
	wrapped := make(map[string]Handler, len(handlers))
	for queue, h := range handlers {
		wrapped[queue] = func(ctx context.Context, body []byte) error {
			err := h(ctx, body)
			obs.ObserveMessage(queue, err)
			return err
		}
	}
	return wrapped
}

// discard подтверждает сообщения очереди, для которой отключена обработка.
func discard(logger *slog.Logger, queue string) Handler {
	return func(context.Context, []byte) error {
		logger.Debug("message dropped", slog.String("queue", queue))
		return nil
	}
}

// Run запускает потребителей и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	const op = "app.worker.Run"
	for queue, h := range a.handlers {
		if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, queue, h); err != nil {
			a.close()
			return fmt.Errorf("%s: %w", op, err)
		}
		a.logger.Info("consumer started", slog.String("queue", queue))
	}

	go func() {
		a.logger.Info("metrics server starting on", slog.String("address", a.metrics.Addr))
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", sl.Err(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("worker shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metrics.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to stop metrics server", sl.Err(err))
	}
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
