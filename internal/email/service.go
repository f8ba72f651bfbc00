package email

import (
	"context"
)

// Message is one outgoing plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg *Message) error
}
