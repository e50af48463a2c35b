package models

import "time"

// SourceText — единственный поддерживаемый источник отзыва.
const SourceText = "text"

// Уровни сложности задачи.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// FeedbackInput — один отправленный текст отзыва. После создания не меняется.
type FeedbackInput struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	OriginalText string    `json:"original_text"`
	SourceType   string    `json:"source_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Task — конкретная задача, сгенерированная из отзыва.
type Task struct {
	ID                   string     `json:"id"`
	InputID              string     `json:"input_id"`
	Position             int        `json:"position"`
	TaskDescription      string     `json:"task_description"`
	EstimatedTimeMinutes *int       `json:"estimated_time_minutes,omitempty"`
	DifficultyLevel      string     `json:"difficulty_level,omitempty"`
	IsCompleted          bool       `json:"is_completed"`
	CreatedAt            time.Time  `json:"created_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

// TaskDraft — задача в том виде, в каком её вернул сервис перевода,
// до сохранения в хранилище.
type TaskDraft struct {
	Description          string
	EstimatedTimeMinutes *int
	DifficultyLevel      string
}

// Translation — результат конвейера перевода: сохранённый отзыв и его задачи.
type Translation struct {
	FeedbackInput *FeedbackInput `json:"feedback_input"`
	Tasks         []*Task        `json:"tasks"`
}
