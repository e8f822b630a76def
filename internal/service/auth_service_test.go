package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/ekuznetsov/campus-market-backend/internal/models"
	"github.com/ekuznetsov/campus-market-backend/internal/pkg/apperror"
	"github.com/ekuznetsov/campus-market-backend/internal/repository"
	"github.com/ekuznetsov/campus-market-backend/internal/validation"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockBanChecker struct {
	mock.Mock
}

func (m *mockBanChecker) IsBanned(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func newAuthFixture() (*mockAuthRepo, *mockBanChecker, *AuthService) {
	repo := new(mockAuthRepo)
	bans := new(mockBanChecker)
	tokens := NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 720*time.Hour)
	svc := NewAuthService(repo, bans, tokens)
	return repo, bans, svc
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo, _, svc := newAuthFixture()
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "student@campus.edu").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "student@campus.edu",
		Password: "Str0ngPass!word",
		Username: "student_one",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, result.User.Role)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
}

func TestAuthService_Register_DerivedUsernameFromDigitLeadingEmail(t *testing.T) {
	repo, _, svc := newAuthFixture()
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "1ab@campus.edu").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "1ab@campus.edu",
		Password: "Str0ngPass!word",
	})

	assert.NoError(t, err)
	// Производное имя не может начинаться с цифры
	assert.Equal(t, "u_1ab", result.User.Username)
	assert.NoError(t, validation.ValidateUsername(result.User.Username))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo, _, svc := newAuthFixture()
	ctx := context.Background()

	existing := &models.User{ID: uuid.New(), Email: "student@campus.edu"}
	repo.On("GetByEmail", ctx, "student@campus.edu").Return(existing, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "student@campus.edu",
		Password: "Str0ngPass!word",
		Username: "student_one",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	repo, bans, svc := newAuthFixture()
	ctx := context.Background()

	userID := uuid.New()
	user := &models.User{
		ID:           userID,
		Email:        "student@campus.edu",
		PasswordHash: hashPassword(t, "Str0ngPass!word"),
		Role:         models.RoleUser,
		IsActive:     true,
	}

	repo.On("GetByEmail", ctx, "student@campus.edu").Return(user, nil)
	bans.On("IsBanned", ctx, userID).Return(false, nil)
	repo.On("UpdateLastLoginAt", ctx, userID).Return(nil)

	result, err := svc.Login(ctx, LoginInput{Email: "student@campus.edu", Password: "Str0ngPass!word"})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo, _, svc := newAuthFixture()
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "student@campus.edu",
		PasswordHash: hashPassword(t, "Str0ngPass!word"),
		IsActive:     true,
	}
	repo.On("GetByEmail", ctx, "student@campus.edu").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "student@campus.edu", Password: "wrong"})

	assert.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthService_Login_BannedUserRejected(t *testing.T) {
	repo, bans, svc := newAuthFixture()
	ctx := context.Background()

	userID := uuid.New()
	user := &models.User{
		ID:           userID,
		Email:        "student@campus.edu",
		PasswordHash: hashPassword(t, "Str0ngPass!word"),
		IsActive:     true,
	}

	repo.On("GetByEmail", ctx, "student@campus.edu").Return(user, nil)
	bans.On("IsBanned", ctx, userID).Return(true, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "student@campus.edu", Password: "Str0ngPass!word"})

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "UpdateLastLoginAt", mock.Anything, mock.Anything)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo, _, svc := newAuthFixture()
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "student@campus.edu",
		PasswordHash: hashPassword(t, "Str0ngPass!word"),
		IsActive:     false,
	}
	repo.On("GetByEmail", ctx, "student@campus.edu").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "student@campus.edu", Password: "Str0ngPass!word"})

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Refresh_BannedUserRejected(t *testing.T) {
	repo, bans, svc := newAuthFixture()
	ctx := context.Background()

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "student@campus.edu", Role: models.RoleUser, IsActive: true}

	pair, err := svc.tokenManager.GeneratePair(user)
	assert.NoError(t, err)

	repo.On("GetByID", ctx, userID).Return(user, nil)
	bans.On("IsBanned", ctx, userID).Return(true, nil)

	_, err = svc.Refresh(ctx, pair.RefreshToken)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}
