// Package services содержит операции над учётными записями пользователей:
// просмотр списка и профиля, изменение и удаление собственной учётной записи.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// UserRepository определяет методы хранилища, нужные для управления пользователями.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Cache сбрасывает закэшированный профиль после изменения пользователя.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// UserService отдаёт пользователей только через models.PublicUser.
// Читать может любой аутентифицированный пользователь, менять и удалять
// только свою учётную запись.
type UserService struct {
	repo     UserRepository
	cache    Cache
	validate *validator.Validate
	log      *slog.Logger
}

// NewUserService создаёт сервис пользователей. cache может быть nil.
func NewUserService(repo UserRepository, cache Cache, log *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
		log:      log,
	}
}

// List возвращает всех пользователей в порядке регистрации.
func (s *UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	const op = "services.user.List"
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		res = append(res, u.Public())
	}
	return res, nil
}

// Get возвращает профиль пользователя по идентификатору.
func (s *UserService) Get(ctx context.Context, id string) (*models.PublicUser, error) {
	const op = "services.user.Get"
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	public := u.Public()
	return &public, nil
}

// Update меняет имя и email учётной записи callerID. Email нормализуется
// перед сохранением, занятый email даёт models.ErrConflict.
func (s *UserService) Update(ctx context.Context, callerID, id, name, email string) (*models.PublicUser, error) {
	const op = "services.user.Update"
	if callerID != id {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	patch := models.UserPatch{
		Name:  strings.TrimSpace(name),
		Email: models.NormalizeEmail(email),
	}
	if patch.Name == "" && patch.Email == "" {
		return nil, fmt.Errorf("%s: nothing to update: %w", op, models.ErrValidation)
	}
	if patch.Email != "" {
		if err := s.validate.Var(patch.Email, "email"); err != nil {
			return nil, fmt.Errorf("%s: email: %w", op, models.ErrValidation)
		}
	}

	u, err := s.repo.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("updated user", slog.String("user_id", id))

	public := u.Public()
	return &public, nil
}

// Delete удаляет учётную запись callerID вместе с её данными.
func (s *UserService) Delete(ctx context.Context, callerID, id string) error {
	const op = "services.user.Delete"
	if callerID != id {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("deleted user", slog.String("user_id", id))
	return nil
}

func (s *UserService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	key := models.UserCacheKey(userID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to invalidate user cache", slog.String("key", key), sl.Err(err))
	}
}
