//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"message-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, passwordHash string) (string, error)
	GetUserByUsername(username string) (User, error)
}

// UserRepository owns the user directory. Usernames are unique and
// immutable; users are never deleted.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the directory's view of a registered account. PasswordHash is
// the encoded argon2id hash; the plaintext never reaches this layer.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type storedUser struct {
	ID           string `cbor:"id"`
	Username     string `cbor:"username"`
	PasswordHash string `cbor:"password_hash"`
	CreatedAt    int64  `cbor:"created_at"`
}

// CreateUser inserts a new user if the username is free and returns the
// generated user ID. The existence check and the insert run in one
// read-write transaction, so two concurrent registrations of the same
// name cannot both commit.
func (u *UserRepository) CreateUser(username, passwordHash string) (string, error) {
	newID := uuid.New().String()
	data, err := cbor.Marshal(storedUser{
		ID:           newID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	key := []byte(userKey(username))
	for {
		err = u.db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get(key); err == nil {
				return errors.ErrUsernameTaken
			}
			return txn.Set(key, data)
		})
		// Badger validates conflicting writes at commit time. Retry so a
		// racing registration surfaces as taken-or-created, never as a
		// transaction conflict.
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			return "", err
		}
		return newID, nil
	}
}

// GetUserByUsername retrieves a user by exact username match.
func (u *UserRepository) GetUserByUsername(username string) (User, error) {
	var stored storedUser

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKey(username)))
		if err != nil {
			return err // callers map this to ErrInvalidCredentials
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &stored)
		})
	})
	if err != nil {
		return User{}, err
	}

	return User{
		ID:           stored.ID,
		Username:     stored.Username,
		PasswordHash: stored.PasswordHash,
		CreatedAt:    time.Unix(stored.CreatedAt, 0).UTC(),
	}, nil
}

func userKey(username string) string {
	return "user:" + username
}
