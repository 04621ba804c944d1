package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"message-relay/domain"

	"github.com/stretchr/testify/require"
)

func newTestMessageRepository(t *testing.T, limit *int) *MessageRepository {
	t.Helper()
	repository, err := NewMessageRepository(openTestDB(t), slog.Default(), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Append_And_Read_Inbox(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, nil)
	at := time.Now().UTC().Truncate(time.Microsecond)

	recipients := []string{"alice", "bob", "alice"}
	for i, recipient := range recipients {
		_, err := repository.Append(domain.Message{
			Sender:    "carol",
			Recipient: recipient,
			Content:   fmt.Sprintf("message %d", i),
			At:        at,
		})
		req.NoError(err)
	}

	aliceInbox, err := repository.InboxFor("alice")
	req.NoError(err)
	req.Len(aliceInbox, 2)
	req.Equal("message 0", aliceInbox[0].Content)
	req.Equal("message 2", aliceInbox[1].Content)
	req.Less(aliceInbox[0].ID, aliceInbox[1].ID)

	bobInbox, err := repository.InboxFor("bob")
	req.NoError(err)
	req.Len(bobInbox, 1)
	req.Equal("carol", bobInbox[0].Sender)
	req.Equal("message 1", bobInbox[0].Content)
}

func Test_Inbox_Empty_For_Unknown_Recipient(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, nil)

	inbox, err := repository.InboxFor("nobody")
	req.NoError(err)
	req.Empty(inbox)
}

func Test_Inbox_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, nil)

	_, err := repository.Append(domain.Message{Sender: "alice", Recipient: "bob", Content: "hi", At: time.Now().UTC()})
	req.NoError(err)

	first, err := repository.InboxFor("bob")
	req.NoError(err)
	second, err := repository.InboxFor("bob")
	req.NoError(err)
	req.Equal(first, second)
}

func Test_Inbox_Limit(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := newTestMessageRepository(t, &limit)

	for i := 0; i < 5; i++ {
		_, err := repository.Append(domain.Message{
			Sender:    "alice",
			Recipient: "bob",
			Content:   fmt.Sprintf("message %d", i),
			At:        time.Now().UTC(),
		})
		req.NoError(err)
	}

	inbox, err := repository.InboxFor("bob")
	req.NoError(err)
	req.Len(inbox, limit)
}

func Test_Message_IDs_Are_Monotonic(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, nil)

	var previous uint64
	for i := 0; i < 10; i++ {
		stored, err := repository.Append(domain.Message{Sender: "a", Recipient: "b", Content: "x", At: time.Now().UTC()})
		req.NoError(err)
		if i > 0 {
			req.Greater(stored.ID, previous)
		}
		previous = stored.ID
	}
}

func Test_Recipient_With_Separator_Stays_Isolated(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, nil)

	// "a:b" must not leak into the inbox of "a".
	_, err := repository.Append(domain.Message{Sender: "x", Recipient: "a:b", Content: "hidden", At: time.Now().UTC()})
	req.NoError(err)

	inbox, err := repository.InboxFor("a")
	req.NoError(err)
	req.Empty(inbox)

	inbox, err = repository.InboxFor("a:b")
	req.NoError(err)
	req.Len(inbox, 1)
}

func Test_Empty_Recipient_Is_A_Valid_Address(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, nil)

	_, err := repository.Append(domain.Message{Sender: "x", Recipient: "", Content: "void", At: time.Now().UTC()})
	req.NoError(err)

	inbox, err := repository.InboxFor("")
	req.NoError(err)
	req.Len(inbox, 1)
}
