package rabbitmq

const (
	// ExchangeEvents — обменник доменных событий.
	ExchangeEvents = "feedbackfix.events"
	// RoutingFeedbackTranslated публикуется после успешного перевода отзыва в задачи.
	RoutingFeedbackTranslated = "feedback.translated"

	// QueueUsageRecord — очередь записи статистики использования.
	QueueUsageRecord = "usage.record"
	// QueueNotificationDigest — очередь отправки письма со списком задач.
	QueueNotificationDigest = "notification.digest"

	prefetchCount = 10
)

// QueueConfig описывает очередь и ключ маршрутизации, по которому она привязана.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetEventQueues возвращает очереди воркера.
func GetEventQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueUsageRecord, RoutingKey: RoutingFeedbackTranslated},
		{QueueName: QueueNotificationDigest, RoutingKey: RoutingFeedbackTranslated},
	}
}
