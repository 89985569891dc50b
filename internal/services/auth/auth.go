// Package auth содержит логику бизнес-уровня для регистрации,
// аутентификации и управления учётной записью пользователя.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/jwt"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/password"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// ErrInvalidCredentials возвращается при неверной паре email/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUser возвращает пользователя по UID или ошибку, если не найден.
	GetUser(ctx context.Context, userUID string) (*models.User, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	UpdateUserProfile(ctx context.Context, userUID, name, photo string) (int, error)
	UpdateUserPassword(ctx context.Context, userUID, passwordHash string) error
	DeleteUserCascade(ctx context.Context, userUID string) error

	// CreateSubscription создает стартовую биллинговую запись для нового пользователя.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
}

// TokenPair — пара токенов, выдаваемая при входе.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и бесплатной
// подпиской в статусе trial на один месяц.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (string, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	trialEnd := time.Now().UTC().AddDate(0, 1, 0)
	sub := models.Subscription{
		UserUID:      uid,
		Plan:         models.PlanFree,
		Status:       models.SubscriptionStatusTrial,
		TrialEndDate: &trialEnd,
	}
	if _, err := s.users.CreateSubscription(ctx, sub); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует пару JWT.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*TokenPair, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user.UID, user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, user, nil
}

// IssueTokens выдает пару JWT без проверки пароля. Используется OAuth-мостом
// после обмена одноразового кода.
func (s *Service) IssueTokens(ctx context.Context, userUID string) (*TokenPair, error) {
	const op = "auth.IssueTokens"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pair, err := s.issueTokens(user.UID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

func (s *Service) issueTokens(userUID, email string) (*TokenPair, error) {
	access, err := s.jwtMaker.GenerateAccessToken(userUID, email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(userUID, email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateToken проверяет access-токен и возвращает UID и email пользователя.
// Refresh-токен здесь не принимается.
func (s *Service) ValidateToken(_ context.Context, token string) (userUID, email string, err error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", "", err
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return "", "", errors.New("token is not an access token")
	}
	return claims.Subject, claims.Email, nil
}

// RefreshTokens проверяет refresh-токен и выдает новую пару JWT.
func (s *Service) RefreshTokens(_ context.Context, refreshToken string) (*TokenPair, error) {
	const op = "auth.RefreshTokens"

	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, errors.New("token is not a refresh token")
	}
	pair, err := s.issueTokens(claims.Subject, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// GetProfile возвращает профиль пользователя без хэша пароля.
func (s *Service) GetProfile(ctx context.Context, userUID string) (*models.User, error) {
	const op = "auth.GetProfile"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile обновляет имя и фотографию пользователя.
func (s *Service) UpdateProfile(ctx context.Context, userUID, name, photo string) (int, error) {
	const op = "auth.UpdateProfile"

	count, err := s.users.UpdateUserProfile(ctx, userUID, name, photo)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ChangePassword проверяет текущий пароль и сохраняет хэш нового.
func (s *Service) ChangePassword(ctx context.Context, userUID, currentPassword, newPassword string) error {
	const op = "auth.ChangePassword"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdateUserPassword(ctx, userUID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAccount удаляет учётную запись вместе со счетами, почтовой
// конфигурацией, подпиской и webhook-подписками.
func (s *Service) DeleteAccount(ctx context.Context, userUID string) error {
	const op = "auth.DeleteAccount"

	if err := s.users.DeleteUserCascade(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
