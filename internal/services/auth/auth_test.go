package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/feedbackfix/internal/cache"
	"github.com/magabrotheeeer/feedbackfix/internal/config"
	customjwt "github.com/magabrotheeeer/feedbackfix/internal/lib/jwt"
	"github.com/magabrotheeeer/feedbackfix/internal/lib/password"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
	services "github.com/magabrotheeeer/feedbackfix/internal/services/auth"
	"github.com/magabrotheeeer/feedbackfix/internal/storage/memory"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, users services.UserRepository, c services.Cache) (*services.AuthService, customjwt.Maker) {
	t.Helper()
	maker := customjwt.NewJWTMaker("test-secret", time.Hour)
	return services.NewAuthService(users, password.New(bcrypt.MinCost), maker, c, discardLogger()), maker
}

func redisCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	return c, mr
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc, maker := newService(t, memory.New(), cache.Noop{})
	ctx := context.Background()

	reg, err := svc.Register(ctx, "  Designer@Example.COM ", "secret123", "Dana")
	require.NoError(t, err)
	assert.Equal(t, "designer@example.com", reg.User.Email)
	assert.Equal(t, models.SubscriptionInactive, reg.User.SubscriptionStatus)

	login, err := svc.Login(ctx, "designer@example.com", "secret123")
	require.NoError(t, err)

	claims, err := maker.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	resolved, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resolved.UserID)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	store := memory.New()
	svc, _ := newService(t, store, cache.Noop{})
	ctx := context.Background()

	first, err := svc.Register(ctx, "dup@example.com", "secret123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "DUP@example.com", "another123", "")
	require.ErrorIs(t, err, models.ErrConflict)

	got, err := store.GetUserByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, got.ID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret123"},
		{name: "invalid email", email: "not-an-email", password: "secret123"},
		{name: "empty password", email: "a@example.com", password: ""},
		{name: "short password", email: "a@example.com", password: "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc, _ := newService(t, repo, cache.Noop{})

			_, err := svc.Register(context.Background(), tt.email, tt.password, "")
			require.ErrorIs(t, err, models.ErrValidation)
			repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_RegisterRepositoryError(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("GetUserByEmail", mock.Anything, "test@example.com").Return(nil, models.ErrNotFound).Once()
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "test@example.com" && u.PasswordHash != "" && u.PasswordHash != "password123"
	})).Return(nil, errors.New("db error")).Once()

	svc, _ := newService(t, repo, cache.Noop{})
	_, err := svc.Register(context.Background(), "test@example.com", "password123", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
	repo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	hasher := password.New(bcrypt.MinCost)
	hash, err := hasher.Hash("correctpassword")
	require.NoError(t, err)
	user := &models.User{ID: "user-1", Email: "user@example.com", PasswordHash: hash}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:     "successful login",
			email:    "User@Example.com",
			password: "correctpassword",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "user@example.com").Return(user, nil).Once()
			},
		},
		{
			name:     "wrong password",
			email:    "user@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "user@example.com").Return(user, nil).Once()
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			email:    "ghost@example.com",
			password: "whatever",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, models.ErrNotFound).Once()
			},
			wantErr: models.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			svc, _ := newService(t, repo, cache.Noop{})

			got, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "user-1", got.User.ID)
				assert.NotEmpty(t, got.Token)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_MeUsesCache(t *testing.T) {
	c, _ := redisCache(t)
	repo := new(UserRepoMock)
	repo.On("GetUserByID", mock.Anything, "user-1").
		Return(&models.User{ID: "user-1", Email: "u@example.com", SubscriptionStatus: models.SubscriptionActive}, nil).Once()

	svc, _ := newService(t, repo, c)
	ctx := context.Background()

	first, err := svc.Me(ctx, "user-1")
	require.NoError(t, err)
	second, err := svc.Me(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, models.SubscriptionActive, second.SubscriptionStatus)
	repo.AssertExpectations(t)
}

func TestAuthService_MeNotFound(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("GetUserByID", mock.Anything, "missing").Return(nil, models.ErrNotFound).Once()
	svc, _ := newService(t, repo, cache.Noop{})

	_, err := svc.Me(context.Background(), "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestAuthService_Authenticate_InvalidTokens(t *testing.T) {
	svc, _ := newService(t, memory.New(), cache.Noop{})
	other := customjwt.NewJWTMaker("other-secret", time.Hour)
	foreign, err := other.GenerateToken("user-1", "u@example.com")
	require.NoError(t, err)
	expiredMaker := customjwt.NewJWTMaker("test-secret", -time.Minute)
	expired, err := expiredMaker.GenerateToken("user-1", "u@example.com")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not.a.jwt",
		"wrong secret": foreign,
		"expired":      expired,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), token)
			require.ErrorIs(t, err, models.ErrUnauthenticated)
		})
	}
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	c, _ := redisCache(t)
	svc, _ := newService(t, memory.New(), c)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "logout@example.com", "secret123", "")
	require.NoError(t, err)

	claims, err := svc.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	_, err = svc.Authenticate(ctx, reg.Token)
	require.ErrorIs(t, err, models.ErrUnauthenticated)

	fresh, err := svc.Login(ctx, "logout@example.com", "secret123")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, fresh.Token)
	require.NoError(t, err)
}

func TestAuthService_LogoutWithoutExpiryUsesTokenTTL(t *testing.T) {
	c, mr := redisCache(t)
	svc, maker := newService(t, memory.New(), c)
	ctx := context.Background()

	claims := &customjwt.CustomClaims{UserID: "user-1"}
	claims.ID = "jti-no-exp"
	require.NoError(t, svc.Logout(ctx, claims))

	assert.True(t, mr.Exists("jwt:revoked:jti-no-exp"))
	assert.Equal(t, maker.TTL(), mr.TTL("jwt:revoked:jti-no-exp"))
}

func TestAuthService_LogoutWithoutCacheIsNoop(t *testing.T) {
	svc, _ := newService(t, memory.New(), cache.Noop{})
	ctx := context.Background()

	reg, err := svc.Register(ctx, "noop@example.com", "secret123", "")
	require.NoError(t, err)
	claims, err := svc.Authenticate(ctx, reg.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = svc.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
}
