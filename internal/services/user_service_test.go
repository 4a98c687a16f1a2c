package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storeapi/internal/apperr"
	"storeapi/internal/models"
	"storeapi/internal/repositories"
	"storeapi/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	userService := services.NewUserService(repositories.NewMemoryUserRepository(), bcrypt.MinCost)

	user, err := userService.Create(ctx, models.SignUpRequest{
		Email:    "  Test@Example.com ",
		Password: "password123",
		FullName: "Test User",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotEqual(t, "password123", user.Password)
	assert.True(t, userService.ComparePassword(user, "password123"))
	assert.False(t, userService.ComparePassword(user, "password124"))

	found, err := userService.FindByEmail(ctx, "TEST@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	byID, err := userService.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	// Email uniqueness ignores case.
	_, err = userService.Create(ctx, models.SignUpRequest{
		Email:    "test@EXAMPLE.com",
		Password: "password123",
		FullName: "Someone Else",
	})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestUserService_CreateRace(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, bcrypt.MinCost)

	// The lookup misses but the unique index catches the concurrent insert.
	mockRepo.On("FindByEmail", ctx, "test@example.com").Return(nil, nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("failed to create user: %w", repositories.ErrDuplicate)).Once()

	_, err := userService.Create(ctx, models.SignUpRequest{Email: "test@example.com", Password: "password123", FullName: "Test"})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
	mockRepo.AssertExpectations(t)
}

func TestUserService_CreateRepositoryFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, bcrypt.MinCost)

	mockRepo.On("FindByEmail", ctx, "test@example.com").Return(nil, fmt.Errorf("database error")).Once()

	_, err := userService.Create(ctx, models.SignUpRequest{Email: "test@example.com", Password: "password123", FullName: "Test"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_ComparePasswordMalformedHash(t *testing.T) {
	userService := services.NewUserService(repositories.NewMemoryUserRepository(), bcrypt.MinCost)
	assert.False(t, userService.ComparePassword(&models.User{Password: "not-a-hash"}, "anything"))
}

func TestUserService_ComparePasswordUnknownUser(t *testing.T) {
	userService := services.NewUserService(repositories.NewMemoryUserRepository(), bcrypt.MinCost)

	assert.False(t, userService.ComparePassword(nil, "password123"))
	assert.False(t, userService.ComparePassword(nil, "storeapi-timing-equalizer"))
	assert.False(t, userService.ComparePassword(nil, ""))
}
