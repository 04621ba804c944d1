// Package domain contains core concepts of the message relay.
// This file defines Message records and related rules.
// Messages are immutable once appended.
package domain

import (
	"time"
)

// Message represents one immutable entry of the relay log.
// A send to several recipients produces one Message per recipient.
type Message struct {
	ID        uint64 // monotonically increasing, assigned by the store
	Sender    string
	Recipient string
	Content   string
	At        time.Time
}
