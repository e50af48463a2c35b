// Package services содержит логику регистрации, входа, выхода и проверки
// JWT пользователей FeedbackFix.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/feedbackfix/internal/lib/jwt"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/password"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// UserCacheTTL — время жизни закэшированного профиля пользователя.
const UserCacheTTL = 10 * time.Minute

// UserRepository описывает контракт для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя, повторный email даёт models.ErrConflict.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail возвращает пользователя по нормализованному email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID возвращает пользователя по идентификатору.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PasswordHasher хэширует и сверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Cache описывает кэш профилей и список отозванных токенов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Result — пользователь и выданный ему токен.
type Result struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	hasher   PasswordHasher
	jwtMaker jwt.Maker
	cache    Cache
	log      *slog.Logger
	validate *validator.Validate
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, hasher PasswordHasher, jwtMaker jwt.Maker, cache Cache, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		jwtMaker: jwtMaker,
		cache:    cache,
		log:      log,
		validate: validator.New(),
	}
}

// Register создаёт пользователя со статусом подписки inactive и выдаёт токен.
func (s *AuthService) Register(ctx context.Context, email, rawPassword, name string) (*Result, error) {
	const op = "services.auth.Register"
	email = models.NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%s: email: %w", op, models.ErrValidation)
	}
	if len(rawPassword) < password.MinLength {
		return nil, fmt.Errorf("%s: password: %w", op, models.ErrValidation)
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.CreateUser(ctx, &models.User{
		Email:              email,
		Name:               strings.TrimSpace(name),
		PasswordHash:       hashed,
		SubscriptionStatus: models.SubscriptionInactive,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("user_id", user.ID))
	return s.issue(op, user)
}

// Login проверяет пароль и выдаёт токен. Неизвестный email и неверный пароль
// дают одну и ту же ошибку models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Result, error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	return s.issue(op, user)
}

func (s *AuthService) issue(op string, user *models.User) (*Result, error) {
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{User: user.Public(), Token: token}, nil
}

// Me возвращает профиль пользователя, сначала из кэша, затем из хранилища.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.PublicUser, error) {
	const op = "services.auth.Me"
	key := models.UserCacheKey(userID)

	var cached models.PublicUser
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read user from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	public := user.Public()
	if err := s.cache.Set(ctx, key, public, UserCacheTTL); err != nil {
		s.log.Warn("failed to cache user", slog.String("key", key), sl.Err(err))
	}
	return &public, nil
}

// Authenticate проверяет токен и список отозванных токенов.
// Любая проблема с токеном даёт models.ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "services.auth.Authenticate"
	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, models.ErrUnauthenticated, err)
	}
	revoked, err := s.cache.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.log.Error("failed to check token revocation", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	if revoked {
		return nil, fmt.Errorf("%s: token revoked: %w", op, models.ErrUnauthenticated)
	}
	return claims, nil
}

// Logout отзывает токен до окончания его срока действия. Токен без exp
// отзывается на полное время жизни токенов.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.CustomClaims) error {
	const op = "services.auth.Logout"
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := s.jwtMaker.TTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.cache.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
