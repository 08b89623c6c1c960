package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/chat-backend/internal/core/domain"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
	"github.com/lorrc/chat-backend/internal/core/mocks"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new user", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository()
		svc := NewAuthService(userRepo)

		userRepo.On("GetByEmail", ctx, "alice@example.com").Return(nil, apperrors.ErrUserNotFound)
		userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) {
				user := args.Get(1).(*domain.User)
				assert.Equal(t, "Alice", user.Name)
				assert.Equal(t, "alice@example.com", user.Email)
				assert.NotEqual(t, "Password1", user.HashedPassword)
				assert.Equal(t, domain.DefaultProfilePic, user.ProfilePic)
			}).
			Return(&domain.User{Name: "Alice", Email: "alice@example.com"}, nil)

		user, err := svc.Register(ctx, "Alice", "alice@example.com", "Password1", "")

		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository()
		svc := NewAuthService(userRepo)

		userRepo.On("GetByEmail", ctx, "alice@example.com").Return(&domain.User{Email: "alice@example.com"}, nil)

		_, err := svc.Register(ctx, "Alice", "alice@example.com", "Password1", "")

		assert.ErrorIs(t, err, apperrors.ErrUserExists)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository()
		svc := NewAuthService(userRepo)

		_, err := svc.Register(ctx, "Alice", "alice@example.com", "short", "")

		var validationErrs *apperrors.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Contains(t, validationErrs.Errors, "password")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hashed, err := domain.HashPassword("Password1")
	require.NoError(t, err)
	stored := &domain.User{Email: "alice@example.com", HashedPassword: hashed}

	t.Run("accepts valid credentials", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository()
		svc := NewAuthService(userRepo)

		userRepo.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)

		user, err := svc.Login(ctx, "alice@example.com", "Password1")

		require.NoError(t, err)
		assert.Equal(t, stored.Email, user.Email)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository()
		svc := NewAuthService(userRepo)

		userRepo.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)

		_, err := svc.Login(ctx, "alice@example.com", "WrongPassword1")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("does not reveal unknown email", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository()
		svc := NewAuthService(userRepo)

		userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrUserNotFound)

		_, err := svc.Login(ctx, "ghost@example.com", "Password1")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}
