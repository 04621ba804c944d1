//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"message-relay/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

type IMessageRepository interface {
	Append(message domain.Message) (domain.Message, error)
	InboxFor(recipient string) ([]domain.Message, error)
}

// MessageRepository owns the append-only message log. Entries are never
// edited, deleted, or expired.
type MessageRepository struct {
	db            *badger.DB
	seq           *badger.Sequence
	log           *slog.Logger
	limitMessages *int
}

// NewMessageRepository opens the log over an existing Badger store.
// Message IDs come from a Badger sequence: monotonic and unique, but not
// gap-free because unused leased bandwidth is discarded on close.
func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte("seq:message"), 128)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log, limitMessages: limitMessages}, nil
}

// Close releases the unused part of the leased ID bandwidth.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

type storedMessage struct {
	ID        uint64 `cbor:"id"`
	Sender    string `cbor:"sender"`
	Recipient string `cbor:"recipient"`
	Content   string `cbor:"content"`
	At        int64  `cbor:"at"`
}

// Append assigns the next ID and persists one message. The key is
// "msg:{recipient}:{id padded to 20 digits}" so that a prefix scan per
// recipient yields messages in ascending ID order. ID assignment and the
// write are atomic with respect to other appends: the sequence hands out
// each ID exactly once and each message is a single key set in its own
// transaction.
func (m *MessageRepository) Append(message domain.Message) (domain.Message, error) {
	id, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, fmt.Errorf("next message id: %w", err)
	}
	message.ID = id

	data, err := cbor.Marshal(storedMessage{
		ID:        message.ID,
		Sender:    message.Sender,
		Recipient: message.Recipient,
		Content:   message.Content,
		At:        message.At.UnixNano(),
	})
	if err != nil {
		return domain.Message{}, err
	}

	key := messageKey(message.Recipient, message.ID)
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// InboxFor returns every message addressed to the recipient, oldest
// first. A recipient with no messages gets an empty slice, not an error.
// The scan runs inside one read transaction, so it sees a consistent
// snapshot of the log.
func (m *MessageRepository) InboxFor(recipient string) ([]domain.Message, error) {
	var rawValues [][]byte
	prefix := []byte(recipientPrefix(recipient))

	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(rawValues) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(val []byte) error {
				rawValues = append(rawValues, append([]byte(nil), val...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(rawValues))
	for _, raw := range rawValues {
		var stored storedMessage
		if err := cbor.Unmarshal(raw, &stored); err != nil {
			return nil, err
		}
		messages = append(messages, domain.Message{
			ID:        stored.ID,
			Sender:    stored.Sender,
			Recipient: stored.Recipient,
			Content:   stored.Content,
			At:        time.Unix(0, stored.At).UTC(),
		})
	}
	return messages, nil
}

// Recipients are free text, so the key segment is base64url-encoded: a
// recipient containing ':' must not be able to escape its own prefix.
func recipientPrefix(recipient string) string {
	return "msg:" + base64.RawURLEncoding.EncodeToString([]byte(recipient)) + ":"
}

func messageKey(recipient string, id uint64) string {
	return fmt.Sprintf("%s%020d", recipientPrefix(recipient), id)
}
