package repositories

import (
	"sync"
	"testing"

	"message-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_And_Get_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	id, err := repository.CreateUser("alice", "$argon2id$fake-hash")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repository.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("alice", user.Username)
	req.Equal("$argon2id$fake-hash", user.PasswordHash)
	req.False(user.CreatedAt.IsZero())
}

func Test_Create_User_Duplicate(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice", "hash-1")
	req.NoError(err)

	_, err = repository.CreateUser("alice", "hash-2")
	req.ErrorIs(err, errors.ErrUsernameTaken)
}

func Test_Create_User_Is_Case_Sensitive(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice", "hash-1")
	req.NoError(err)

	// "Alice" and "alice" are different users: exact match only.
	_, err = repository.CreateUser("Alice", "hash-2")
	req.NoError(err)
}

func Test_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetUserByUsername("nobody")
	req.Error(err)
}

func Test_Concurrent_Registration_Single_Winner(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repository.CreateUser("contended", "hash")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			req.ErrorIs(err, errors.ErrUsernameTaken)
		}
	}
	req.Equal(1, succeeded)
}
