package services

import (
	"testing"
	"time"

	"message-relay/auth"
	"message-relay/errors"
	"message-relay/mocks"
	"message-relay/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", 24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, newTestTokenManager())

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		username := "alice"
		password := "pw1"
		expectedUserID := "user-uuid"

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(username, gomock.Not(gomock.Eq(password))).
			Return(expectedUserID, nil).
			Times(1)

		userID, err := svc.Register(username, password)

		req.NoError(err)
		req.Equal(expectedUserID, userID)
	})

	t.Run("should fail when username is empty", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register("", "pw1")

		req.ErrorIs(err, errors.ErrInvalidInput)
	})

	t.Run("should fail when password is empty", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register("alice", "")

		req.ErrorIs(err, errors.ErrInvalidInput)
	})

	t.Run("should fail when username is already taken", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser("duplicate", gomock.Any()).
			Return("", errors.ErrUsernameTaken).
			Times(1)

		_, err := svc.Register("duplicate", "pw1")

		req.ErrorIs(err, errors.ErrUsernameTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := newTestTokenManager()
	svc := NewAuthService(mockRepo, tokens)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		username := "alice"
		password := "pw1"

		hashedPassword, _ := auth.HashPassword(password)
		storedUser := repositories.User{
			ID:           "uuid-123",
			Username:     username,
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetUserByUsername(username).
			Return(storedUser, nil).
			Times(1)

		session, err := svc.Login(username, password)

		req.NoError(err)
		req.NotEmpty(session.Token)
		req.Equal(storedUser.ID, session.Identity.UserID)
		req.Equal(username, session.Identity.Username)

		// The token binds the same identity it was issued for.
		identity, err := tokens.Validate(session.Token)
		req.NoError(err)
		req.Equal(session.Identity, identity)
	})

	t.Run("should return invalid credentials on wrong password", func(t *testing.T) {
		req := require.New(t)
		username := "alice"

		hashedPassword, _ := auth.HashPassword("right password")
		storedUser := repositories.User{
			ID:           "uuid-123",
			Username:     username,
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetUserByUsername(username).
			Return(storedUser, nil).
			Times(1)

		_, err := svc.Login(username, "wrong password")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByUsername("unknown").
			Return(repositories.User{}, errors.ErrInvalidCredentials).
			Times(1)

		_, err := svc.Login("unknown", "anyPassword")

		// Identical failure for unknown user and wrong password.
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
