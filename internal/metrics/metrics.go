// Package metrics содержит метрики Prometheus для HTTP API, сервиса перевода и воркера.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "feedbackfix"

// Metrics — набор метрик приложения.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	TranslationCalls    *prometheus.CounterVec
	TranslationDuration *prometheus.HistogramVec
	WorkerMessages      *prometheus.CounterVec
}

// New создаёт метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		TranslationCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translator_calls_total",
			Help:      "Calls to the translation model by model and result.",
		}, []string{"model", "result"}),
		TranslationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translator_call_duration_seconds",
			Help:      "Latency of calls to the translation model.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"model"}),
		WorkerMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_messages_total",
			Help:      "Messages processed by the worker by queue and result.",
		}, []string{"queue", "result"}),
	}
	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.TranslationCalls, m.TranslationDuration, m.WorkerMessages)
	return m
}

// ObserveHTTP учитывает один HTTP-запрос.
func (m *Metrics) ObserveHTTP(route, method string, code int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveTranslation учитывает одно обращение к модели перевода.
func (m *Metrics) ObserveTranslation(model, result string, d time.Duration) {
	m.TranslationCalls.WithLabelValues(model, result).Inc()
	m.TranslationDuration.WithLabelValues(model).Observe(d.Seconds())
}

// ObserveMessage учитывает одно сообщение, обработанное воркером.
func (m *Metrics) ObserveMessage(queue string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.WorkerMessages.WithLabelValues(queue, result).Inc()
}
