package models

import "time"

// Значения по умолчанию и допустимые статусы для простых элементов обратной связи.
const (
	ItemCategoryGeneral  = "general"
	ItemStatusPending    = "pending"
	ItemStatusInProgress = "in_progress"
	ItemStatusResolved   = "resolved"
	ItemStatusClosed     = "closed"
)

// Item — элемент обратной связи из простого CRUD-шаблона.
type Item struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemFilter задаёт фильтры списка элементов. Пустое поле означает отсутствие фильтра.
type ItemFilter struct {
	OwnerID  string
	Category string
	Status   string
}

// Match проверяет элемент на точное совпадение со всеми заданными фильтрами.
func (f ItemFilter) Match(it *Item) bool {
	if f.Category != "" && it.Category != f.Category {
		return false
	}
	if f.Status != "" && it.Status != f.Status {
		return false
	}
	return true
}

// ItemPatch описывает частичное обновление элемента. Пустые поля не меняются.
type ItemPatch struct {
	Title       string
	Description string
	Category    string
	Status      string
}
