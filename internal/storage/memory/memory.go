// Package memory реализует хранилище FeedbackFix в памяти процесса.
// Используется, когда строка подключения к PostgreSQL не задана, и в тестах.
// Все операции выполняются под одним мьютексом, наружу отдаются копии записей.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// Storage хранит все сущности в map и сохраняет порядок вставки в срезах.
type Storage struct {
	mu  sync.RWMutex
	now func() time.Time

	users        map[string]*models.User
	usersByEmail map[string]string
	userOrder    []string

	projects     map[string]*models.Project
	projectOrder []string

	inputs     map[string]*models.FeedbackInput
	inputOrder []string

	tasks        map[string]*models.Task
	tasksByInput map[string][]string

	items     map[string]*models.Item
	itemOrder []string

	usage []*models.Usage
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[string]*models.User),
		usersByEmail: make(map[string]string),
		projects:     make(map[string]*models.Project),
		inputs:       make(map[string]*models.FeedbackInput),
		tasks:        make(map[string]*models.Task),
		tasksByInput: make(map[string][]string),
		items:        make(map[string]*models.Item),
	}
}

// Ping всегда успешен.
func (s *Storage) Ping(context.Context) error { return nil }

// Close ничего не делает.
func (s *Storage) Close() error { return nil }

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, models.ErrNotFound)
}
