package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/logger"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/pkg/apperror"
	"github.com/workhub/marketplace-backend/internal/repository"
	"github.com/workhub/marketplace-backend/internal/validation"
)

// AuthUserRepository описывает зависимости AuthService от слоя хранилища.
type AuthUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error
	ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error
	DeleteAllSessionsExcept(ctx context.Context, userID uuid.UUID, exceptRefreshToken string) error
}

// AuthProfileRepository создаёт пустую анкету фрилансера при регистрации.
type AuthProfileRepository interface {
	UpsertProfile(ctx context.Context, profile *models.FreelancerProfile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	users        AuthUserRepository
	profiles     AuthProfileRepository
	tokenManager *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email       string
	Password    string
	Username    string
	Role        string
	DisplayName string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// SessionMeta метаданные сессии: user agent и IP клиента.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users AuthUserRepository, profiles AuthProfileRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		users:        users,
		profiles:     profiles,
		tokenManager: tokenManager,
	}
}

// Register создаёт нового пользователя. Для роли freelancer сразу создаётся
// пустая анкета со статусом pending_review, чтобы фрилансер попал в очередь
// модерации после заполнения профиля.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta SessionMeta) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	role := in.Role
	if role == "" {
		role = models.RoleClient
	}
	if _, ok := models.ValidRoles[role]; !ok || role == models.RoleAdmin {
		return nil, apperror.Newf(apperror.ErrCodeValidation, "недопустимая роль %q", in.Role)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	username := in.Username
	if username == "" {
		username = deriveUsername(in.Email)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(in.Email),
		Username:     username,
		PasswordHash: string(passHash),
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if role == models.RoleFreelancer {
		displayName := in.DisplayName
		if displayName == "" {
			displayName = username
		}

		profile := &models.FreelancerProfile{
			UserID:       user.ID,
			DisplayName:  displayName,
			Skills:       []string{},
			Requirements: models.RequirementList{},
		}

		if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
			return nil, err
		}
	}

	tokenPair, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta SessionMeta) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLoginAt(ctx, user.ID); err != nil {
		// Не прерываем вход из-за вспомогательного обновления.
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("Не удалось обновить last_login_at")
	}

	tokenPair, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Refresh выпускает новую пару токенов, отзывая старую сессию. Токен без
// живой сессии (после logout или отзыва) отклоняется, даже если подпись
// ещё действительна.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta SessionMeta) (*TokenPair, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "некорректный subject токена")
	}

	if _, err := s.users.GetSessionByToken(ctx, oldToken); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "сессия отозвана")
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.DeleteSession(ctx, oldToken); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user, meta)
}

// Logout отзывает refresh токен.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.users.DeleteSession(ctx, refreshToken)
}

// Me возвращает пользователя по идентификатору.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListSessions возвращает список активных сессий пользователя.
func (s *AuthService) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	return s.users.ListSessions(ctx, userID)
}

// DeleteSession удаляет сессию по идентификатору.
func (s *AuthService) DeleteSession(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	return s.users.DeleteSessionByID(ctx, sessionID, userID)
}

// DeleteAllSessionsExcept удаляет все сессии пользователя кроме текущей.
func (s *AuthService) DeleteAllSessionsExcept(ctx context.Context, userID uuid.UUID, currentRefreshToken string) error {
	return s.users.DeleteAllSessionsExcept(ctx, userID, currentRefreshToken)
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, meta SessionMeta) (*TokenPair, error) {
	tokenPair, _, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    refreshExp,
	}
	if meta.UserAgent != "" {
		ua := meta.UserAgent
		session.UserAgent = &ua
	}
	if meta.IP != "" {
		ip := meta.IP
		session.IPAddress = &ip
	}

	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return tokenPair, nil
}

// deriveUsername формирует валидный username из email.
func deriveUsername(email string) string {
	name := strings.Split(email, "@")[0]
	name = strings.NewReplacer(".", "_", "+", "_", "-", "_").Replace(name)
	name = strings.ToLower(name)
	switch {
	case len(name) < 3:
		name = "user_" + uuid.NewString()[:6]
	case name[0] >= '0' && name[0] <= '9':
		// Имя пользователя не может начинаться с цифры.
		name = "user_" + name
	}
	return name
}
