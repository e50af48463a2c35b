package services

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
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	args := m.Called(ctx, toEmail, toName, subject, body)
	return args.Error(0)
}

func newTestService(tr Transport) *SenderService {
	return NewSenderService(tr, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func eventBody(t *testing.T, event models.FeedbackTranslatedEvent) []byte {
	t.Helper()
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return b
}

func TestSendTaskDigest(t *testing.T) {
	tr := new(MockTransport)
	svc := newTestService(tr)
	event := models.FeedbackTranslatedEvent{
		UserID:      "user-1",
		Email:       "dev@example.com",
		ProjectName: "Landing",
		InputID:     "input-1",
		Tasks:       []string{"Increase contrast", "Add shadow"},
		CreatedAt:   time.Now(),
	}

	tr.On("Send", mock.Anything, "dev@example.com", "", "FeedbackFix: 2 new tasks for Landing",
		mock.MatchedBy(func(body string) bool {
			return assert.Contains(t, body, "1. Increase contrast") && assert.Contains(t, body, "2. Add shadow")
		})).Return(nil).Once()

	require.NoError(t, svc.SendTaskDigest(context.Background(), eventBody(t, event)))
	tr.AssertExpectations(t)
}

func TestSendTaskDigest_Skipped(t *testing.T) {
	tests := []struct {
		name  string
		event models.FeedbackTranslatedEvent
	}{
		{name: "no tasks", event: models.FeedbackTranslatedEvent{Email: "dev@example.com"}},
		{name: "no email", event: models.FeedbackTranslatedEvent{Tasks: []string{"a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(MockTransport)
			svc := newTestService(tr)
			require.NoError(t, svc.SendTaskDigest(context.Background(), eventBody(t, tt.event)))
			tr.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSendTaskDigest_Errors(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		svc := newTestService(new(MockTransport))
		assert.Error(t, svc.SendTaskDigest(context.Background(), []byte("{")))
	})

	t.Run("transport error", func(t *testing.T) {
		tr := new(MockTransport)
		svc := newTestService(tr)
		sendErr := errors.New("sendgrid down")
		tr.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(sendErr)

		err := svc.SendTaskDigest(context.Background(), eventBody(t, models.FeedbackTranslatedEvent{
			Email: "dev@example.com", Tasks: []string{"a"},
		}))
		require.ErrorIs(t, err, sendErr)
	})
}
