package services

import (
	"fmt"

	"message-relay/auth"
	"message-relay/errors"
	"message-relay/repositories"
)

type IAuthService interface {
	Register(username, password string) (string, error)
	Login(username, password string) (Session, error)
}

// Session is an established binding between a token and a user identity.
type Session struct {
	Token    string
	Identity auth.Identity
}

// AuthService implements the user directory operations: registration and
// credential verification.
type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenManager
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenManager) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

// Register creates a new user and returns its ID. It does not establish
// a session; the caller proceeds to login.
func (s *AuthService) Register(username, password string) (string, error) {
	form := auth.CredentialsForm{
		Username: username,
		Password: password,
	}

	// 1. Reject empty fields before any expensive cryptographic operation.
	if err := auth.ValidateCredentials(form); err != nil {
		return "", err
	}

	// 2. Hash the password using Argon2id.
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash.
	userID, err := s.userRepository.CreateUser(username, hashedPassword)
	if err != nil {
		return "", err // Will propagate ErrUsernameTaken if the name is claimed
	}

	return userID, nil
}

// Login verifies credentials and returns a bound session. Unknown user
// and wrong password fail identically so usernames cannot be enumerated.
func (s *AuthService) Login(username, password string) (Session, error) {
	// 1. Retrieve the user by exact username match.
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		return Session{}, errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash.
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	// 3. Issue the session token.
	identity := auth.Identity{UserID: user.ID, Username: user.Username}
	token, err := s.tokens.Generate(identity)
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}

	return Session{Token: token, Identity: identity}, nil
}
