package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedbackfix/internal/models"
	services "github.com/magabrotheeeer/feedbackfix/internal/services/project"
	"github.com/magabrotheeeer/feedbackfix/internal/storage/memory"
)

type ProjectRepoMock struct {
	mock.Mock
}

func (m *ProjectRepoMock) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *ProjectRepoMock) GetProject(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *ProjectRepoMock) ListProjectsByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *ProjectRepoMock) DeleteProject(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUsers(t *testing.T, store *memory.Storage) (owner, stranger string) {
	t.Helper()
	ctx := context.Background()
	a, err := store.CreateUser(ctx, &models.User{Email: "owner@example.com"})
	require.NoError(t, err)
	b, err := store.CreateUser(ctx, &models.User{Email: "stranger@example.com"})
	require.NoError(t, err)
	return a.ID, b.ID
}

func TestProjectService_Create(t *testing.T) {
	tests := []struct {
		name     string
		project  string
		wantName string
		wantErr  error
	}{
		{name: "valid name", project: "Landing page", wantName: "Landing page"},
		{name: "trimmed name", project: "  Dashboard  ", wantName: "Dashboard"},
		{name: "empty name", project: "", wantErr: models.ErrValidation},
		{name: "whitespace name", project: " \t\n", wantErr: models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			owner, _ := seedUsers(t, store)
			svc := services.NewProjectService(store, discardLogger())

			p, err := svc.Create(context.Background(), owner, tt.project, "")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				list, _ := store.ListProjectsByOwner(context.Background(), owner)
				assert.Empty(t, list)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, owner, p.OwnerID)
		})
	}
}

func TestProjectService_ListIsScopedAndStable(t *testing.T) {
	store := memory.New()
	owner, stranger := seedUsers(t, store)
	svc := services.NewProjectService(store, discardLogger())
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, owner, name, "")
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, stranger, "Foreign", "")
	require.NoError(t, err)

	first, err := svc.List(ctx, owner)
	require.NoError(t, err)
	second, err := svc.List(ctx, owner)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "A", first[0].Name)
	assert.Equal(t, "C", first[2].Name)
}

func TestProjectService_GetMasksForeignProjects(t *testing.T) {
	store := memory.New()
	owner, stranger := seedUsers(t, store)
	svc := services.NewProjectService(store, discardLogger())
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, "Mine", "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Get(ctx, p.ID, stranger)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Get(ctx, "missing", owner)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestProjectService_Delete(t *testing.T) {
	store := memory.New()
	owner, stranger := seedUsers(t, store)
	svc := services.NewProjectService(store, discardLogger())
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, "Mine", "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, p.ID, stranger), models.ErrNotFound)
	_, err = svc.Get(ctx, p.ID, owner)
	require.NoError(t, err, "foreign delete must not remove the project")

	require.NoError(t, svc.Delete(ctx, p.ID, owner))
	_, err = svc.Get(ctx, p.ID, owner)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestProjectService_RepositoryError(t *testing.T) {
	repo := new(ProjectRepoMock)
	repo.On("ListProjectsByOwner", mock.Anything, "owner").Return(nil, errors.New("db down")).Once()
	svc := services.NewProjectService(repo, discardLogger())

	_, err := svc.List(context.Background(), "owner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Contains(t, err.Error(), "services.project.List")
	repo.AssertExpectations(t)
}
