package services

import (
	"time"

	"message-relay/auth"
	"message-relay/domain"
	"message-relay/repositories"
)

type IRelayService interface {
	Send(sender auth.Identity, content string, recipients []string) (int, error)
	Inbox(reader auth.Identity) ([]domain.Message, error)
}

// RelayService implements fan-out send and recipient-scoped read over the
// message log. The acting identity always comes from the session binding,
// never from request input.
type RelayService struct {
	messageRepository repositories.IMessageRepository
}

func NewRelayService(repo repositories.IMessageRepository) IRelayService {
	return &RelayService{messageRepository: repo}
}

// Send appends one message per recipient, in order, and returns the
// number appended. Recipients are taken verbatim: duplicates fan out to
// duplicate messages and an empty string is a legal (if unreachable)
// address. Recipient names are not checked against the directory; a
// message to an unregistered name simply waits for that name to register.
func (s *RelayService) Send(sender auth.Identity, content string, recipients []string) (int, error) {
	at := time.Now().UTC()
	for _, recipient := range recipients {
		_, err := s.messageRepository.Append(domain.Message{
			Sender:    sender.Username,
			Recipient: recipient,
			Content:   content,
			At:        at,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(recipients), nil
}

// Inbox returns the reader's messages, oldest first.
func (s *RelayService) Inbox(reader auth.Identity) ([]domain.Message, error) {
	return s.messageRepository.InboxFor(reader.Username)
}
