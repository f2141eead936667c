package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/pkg/apperror"
	"github.com/workhub/marketplace-backend/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockUserRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockUserRepo) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockUserRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockUserRepo) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Session), args.Error(1)
}

func (m *mockUserRepo) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, sessionID, userID)
	return args.Error(0)
}

func (m *mockUserRepo) DeleteAllSessionsExcept(ctx context.Context, userID uuid.UUID, exceptRefreshToken string) error {
	args := m.Called(ctx, userID, exceptRefreshToken)
	return args.Error(0)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) UpsertProfile(ctx context.Context, profile *models.FreelancerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FreelancerProfile), args.Error(1)
}

func testTokenManager() *TokenManager {
	return NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 720*time.Hour)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register_Client(t *testing.T) {
	users := new(mockUserRepo)
	profiles := new(mockProfileRepo)
	svc := NewAuthService(users, profiles, testTokenManager())
	ctx := context.Background()

	users.On("GetByEmail", ctx, "client@example.com").Return(nil, repository.ErrUserNotFound)
	users.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = uuid.New()
		}).Return(nil)
	users.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "client@example.com",
		Password: "Password123",
	}, SessionMeta{})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleClient, result.User.Role)
	assert.Equal(t, "client", result.User.Username)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	// Анкета создаётся только для фрилансеров.
	profiles.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestAuthService_Register_FreelancerGetsProfile(t *testing.T) {
	users := new(mockUserRepo)
	profiles := new(mockProfileRepo)
	svc := NewAuthService(users, profiles, testTokenManager())
	ctx := context.Background()

	users.On("GetByEmail", ctx, "pro@example.com").Return(nil, repository.ErrUserNotFound)
	users.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = uuid.New()
		}).Return(nil)
	profiles.On("UpsertProfile", ctx, mock.AnythingOfType("*models.FreelancerProfile")).Return(nil)
	users.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:       "pro@example.com",
		Password:    "Password123",
		Role:        models.RoleFreelancer,
		DisplayName: "Профи",
	}, SessionMeta{UserAgent: "test-agent", IP: "127.0.0.1"})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleFreelancer, result.User.Role)
	profiles.AssertExpectations(t)

	profile := profiles.Calls[0].Arguments.Get(1).(*models.FreelancerProfile)
	assert.Equal(t, result.User.ID, profile.UserID)
	assert.Equal(t, "Профи", profile.DisplayName)
	assert.Empty(t, profile.Requirements)
}

func TestAuthService_Register_DerivedUsernameAlwaysValid(t *testing.T) {
	cases := []struct {
		email    string
		username string
	}{
		{"1abc@x.com", "user_1abc"},
		{"ab-cd@x.com", "ab_cd"},
		{"john.doe+tag@x.com", "john_doe_tag"},
	}

	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			users := new(mockUserRepo)
			svc := NewAuthService(users, new(mockProfileRepo), testTokenManager())
			ctx := context.Background()

			users.On("GetByEmail", ctx, tc.email).Return(nil, repository.ErrUserNotFound)
			users.On("Create", ctx, mock.AnythingOfType("*models.User")).
				Run(func(args mock.Arguments) {
					args.Get(1).(*models.User).ID = uuid.New()
				}).Return(nil)
			users.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

			result, err := svc.Register(ctx, RegisterInput{
				Email:    tc.email,
				Password: "Password123",
			}, SessionMeta{})

			assert.NoError(t, err)
			assert.Equal(t, tc.username, result.User.Username)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewAuthService(users, new(mockProfileRepo), testTokenManager())
	ctx := context.Background()

	existing := &models.User{ID: uuid.New(), Email: "client@example.com"}
	users.On("GetByEmail", ctx, "client@example.com").Return(existing, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "client@example.com",
		Password: "Password123",
	}, SessionMeta{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "уже зарегистрирован")
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_AdminRoleForbidden(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewAuthService(users, new(mockProfileRepo), testTokenManager())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "admin@example.com",
		Password: "Password123",
		Role:     models.RoleAdmin,
	}, SessionMeta{})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewAuthService(users, new(mockProfileRepo), testTokenManager())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "client@example.com",
		Password: "123",
	}, SessionMeta{})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewAuthService(users, new(mockProfileRepo), testTokenManager())
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "client@example.com",
		PasswordHash: hashPassword(t, "Password123"),
		Role:         models.RoleClient,
		IsActive:     true,
	}

	users.On("GetByEmail", ctx, "client@example.com").Return(user, nil)
	users.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)
	users.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Login(ctx, LoginInput{
		Email:    "client@example.com",
		Password: "Password123",
	}, SessionMeta{UserAgent: "test-agent", IP: "127.0.0.1"})

	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	users.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewAuthService(users, new(mockProfileRepo), testTokenManager())
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "client@example.com",
		PasswordHash: hashPassword(t, "Password123"),
		IsActive:     true,
	}
	users.On("GetByEmail", ctx, "client@example.com").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{
		Email:    "client@example.com",
		Password: "WrongPassword1",
	}, SessionMeta{})

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	users.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewAuthService(users, new(mockProfileRepo), testTokenManager())
	ctx := context.Background()

	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, LoginInput{
		Email:    "ghost@example.com",
		Password: "Password123",
	}, SessionMeta{})

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_BlockedAccount(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewAuthService(users, new(mockProfileRepo), testTokenManager())
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "client@example.com",
		PasswordHash: hashPassword(t, "Password123"),
		IsActive:     false,
	}
	users.On("GetByEmail", ctx, "client@example.com").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{
		Email:    "client@example.com",
		Password: "Password123",
	}, SessionMeta{})

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	users := new(mockUserRepo)
	tokens := testTokenManager()
	svc := NewAuthService(users, new(mockProfileRepo), tokens)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: models.RoleClient, IsActive: true}
	pair, _, _, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	users.On("GetSessionByToken", ctx, pair.RefreshToken).
		Return(&models.Session{ID: uuid.New(), UserID: user.ID, RefreshToken: pair.RefreshToken}, nil)
	users.On("GetByID", ctx, user.ID).Return(user, nil)
	users.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)
	users.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken, SessionMeta{})

	assert.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)
	users.AssertExpectations(t)
}

func TestAuthService_Refresh_RevokedSession(t *testing.T) {
	users := new(mockUserRepo)
	tokens := testTokenManager()
	svc := NewAuthService(users, new(mockProfileRepo), tokens)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: models.RoleClient, IsActive: true}
	pair, _, _, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	// Подпись токена ещё действительна, но сессия уже удалена через logout.
	users.On("GetSessionByToken", ctx, pair.RefreshToken).Return(nil, repository.ErrSessionNotFound)

	_, err = svc.Refresh(ctx, pair.RefreshToken, SessionMeta{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "сессия отозвана")
	users.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewAuthService(users, new(mockProfileRepo), testTokenManager())
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "не.токен.вовсе", SessionMeta{})

	assert.Error(t, err)
	users.AssertNotCalled(t, "DeleteSession", mock.Anything, mock.Anything)
}

func TestTokenManager_ParseAccess(t *testing.T) {
	tokens := testTokenManager()
	user := &models.User{ID: uuid.New(), Role: models.RoleFreelancer}

	pair, _, _, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	userID, role, err := tokens.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleFreelancer, role)

	// Access токен не проходит как refresh и наоборот.
	_, err = tokens.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
	_, _, err = tokens.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
}
