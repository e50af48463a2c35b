package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
	services "github.com/magabrotheeeer/feedbackfix/internal/services/usage"
	"github.com/magabrotheeeer/feedbackfix/internal/storage/memory"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) CreateUsage(ctx context.Context, usage *models.Usage) error {
	return m.Called(ctx, usage).Error(0)
}

func (m *RepositoryMock) ListUsageByUser(ctx context.Context, userID string) ([]*models.Usage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Usage), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func body(t *testing.T, event models.FeedbackTranslatedEvent) []byte {
	t.Helper()
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return b
}

func TestRecord(t *testing.T) {
	store := memory.New()
	svc := services.NewUsageService(store, discardLogger())
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := svc.Record(ctx, body(t, models.FeedbackTranslatedEvent{
		UserID:     "user-1",
		Tasks:      []string{"a", "b", "c"},
		DurationMs: 1250,
		CreatedAt:  created,
	}))
	require.NoError(t, err)

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, services.EndpointTranslate, list[0].Endpoint)
	assert.Equal(t, 3, list[0].TasksCount)
	assert.Equal(t, int64(1250), list[0].DurationMs)
	assert.True(t, created.Equal(list[0].CreatedAt))
}

func TestRecord_Dropped(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		mock func(m *RepositoryMock)
	}{
		{name: "invalid json", body: []byte("{")},
		{name: "empty user", body: []byte(`{"tasks":["a"]}`)},
		{
			name: "unknown user",
			body: []byte(`{"user_id":"ghost"}`),
			mock: func(m *RepositoryMock) {
				m.On("CreateUsage", mock.Anything, mock.Anything).Return(models.ErrNotFound)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepositoryMock)
			if tt.mock != nil {
				tt.mock(repo)
			}
			svc := services.NewUsageService(repo, discardLogger())
			assert.NoError(t, svc.Record(context.Background(), tt.body))
		})
	}
}

func TestRecord_StorageErrorRequeues(t *testing.T) {
	repo := new(RepositoryMock)
	dbErr := errors.New("connection reset")
	repo.On("CreateUsage", mock.Anything, mock.MatchedBy(func(u *models.Usage) bool {
		return u.UserID == "user-1" && u.TasksCount == 1
	})).Return(dbErr)

	svc := services.NewUsageService(repo, discardLogger())
	err := svc.Record(context.Background(), []byte(`{"user_id":"user-1","tasks":["a"]}`))
	require.ErrorIs(t, err, dbErr)
}
