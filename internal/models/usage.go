package models

import "time"

// Usage — запись об одном обращении к сервису перевода.
type Usage struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Endpoint   string    `json:"endpoint"`
	TasksCount int       `json:"tasks_count"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackTranslatedEvent публикуется в RabbitMQ после успешного перевода.
type FeedbackTranslatedEvent struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	InputID     string    `json:"input_id"`
	Tasks       []string  `json:"tasks"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
