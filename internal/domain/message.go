package domain

import (
	"time"

	"shapechat/internal/media"
)

// Sender distinguishes the two parties of a conversation.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Message is one entry in a conversation log. It is immutable after
// creation except for the bounded in-place annotation applied when a
// send fails before reaching the network.
type Message struct {
	ID        string
	Content   string
	Sender    Sender
	Timestamp time.Time

	// LocalMedia previews a user attachment. It is presentation-only
	// and never sent over the wire; the log owns this handle and it
	// stays valid until the log is cleared.
	LocalMedia *media.Handle
}
