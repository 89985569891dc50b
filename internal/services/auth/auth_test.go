package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/jwt"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/password"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
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
func (m *UserRepoMock) UpdateUserProfile(ctx context.Context, userUID, name, photo string) (int, error) {
	args := m.Called(ctx, userUID, name, photo)
	return args.Int(0), args.Error(1)
}
func (m *UserRepoMock) UpdateUserPassword(ctx context.Context, userUID, passwordHash string) error {
	return m.Called(ctx, userUID, passwordHash).Error(0)
}
func (m *UserRepoMock) DeleteUserCascade(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}
func (m *UserRepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

const testUID = "4f2a9c33-8a7d-4c55-b5a4-7f01e2d3c4b5"

func newTestService(users *UserRepoMock) *Service {
	maker := jwt.NewJWTMaker("test-secret", 15*time.Minute, 24*time.Hour)
	return New(users, maker)
}

func TestRegister_CreatesTrialSubscription(t *testing.T) {
	users := new(UserRepoMock)
	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "user@example.com" && u.Name == "User" && u.PasswordHash != "secret123"
	})).Return(testUID, nil)
	users.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		return sub.UserUID == testUID &&
			sub.Plan == models.PlanFree &&
			sub.Status == models.SubscriptionStatusTrial &&
			sub.TrialEndDate != nil && sub.TrialEndDate.After(time.Now().UTC())
	})).Return(1, nil)

	svc := newTestService(users)
	uid, err := svc.Register(context.Background(), "User", "user@example.com", "secret123")

	assert.NoError(t, err)
	assert.Equal(t, testUID, uid)
	users.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	hashed, err := password.GetHash("secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "correct password", password: "secret123", wantErr: nil},
		{name: "wrong password", password: "wrong", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserRepoMock)
			users.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&models.User{
				UID:          testUID,
				Email:        "user@example.com",
				PasswordHash: hashed,
			}, nil)

			svc := newTestService(users)
			pair, user, err := svc.Login(context.Background(), "user@example.com", tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, pair)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testUID, user.UID)
			assert.NotEmpty(t, pair.AccessToken)
			assert.NotEmpty(t, pair.RefreshToken)
		})
	}
}

func TestValidateToken_RejectsRefreshToken(t *testing.T) {
	users := new(UserRepoMock)
	users.On("GetUser", mock.Anything, testUID).Return(&models.User{
		UID:   testUID,
		Email: "user@example.com",
	}, nil)

	svc := newTestService(users)
	pair, err := svc.IssueTokens(context.Background(), testUID)
	require.NoError(t, err)

	uid, email, err := svc.ValidateToken(context.Background(), pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, testUID, uid)
	assert.Equal(t, "user@example.com", email)

	_, _, err = svc.ValidateToken(context.Background(), pair.RefreshToken)
	assert.Error(t, err)
}

func TestRefreshTokens_RejectsAccessToken(t *testing.T) {
	users := new(UserRepoMock)
	users.On("GetUser", mock.Anything, testUID).Return(&models.User{
		UID:   testUID,
		Email: "user@example.com",
	}, nil)

	svc := newTestService(users)
	pair, err := svc.IssueTokens(context.Background(), testUID)
	require.NoError(t, err)

	fresh, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	_, err = svc.RefreshTokens(context.Background(), pair.AccessToken)
	assert.Error(t, err)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	hashed, err := password.GetHash("secret123")
	require.NoError(t, err)

	users := new(UserRepoMock)
	users.On("GetUser", mock.Anything, testUID).Return(&models.User{
		UID:          testUID,
		PasswordHash: hashed,
	}, nil)

	svc := newTestService(users)
	err = svc.ChangePassword(context.Background(), testUID, "wrong", "newpassword")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	users.AssertNotCalled(t, "UpdateUserPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProfile_BlanksPasswordHash(t *testing.T) {
	users := new(UserRepoMock)
	users.On("GetUser", mock.Anything, testUID).Return(&models.User{
		UID:          testUID,
		Email:        "user@example.com",
		PasswordHash: "$2a$10$something",
	}, nil)

	svc := newTestService(users)
	user, err := svc.GetProfile(context.Background(), testUID)

	assert.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
}
