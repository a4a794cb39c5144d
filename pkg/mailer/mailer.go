// Package mailer delivers rendered transactional mail over SMTP or Amazon SES.
package mailer

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidMessage is returned for messages missing a recipient or subject.
var ErrInvalidMessage = errors.New("invalid mail message")

// Message is one rendered HTML mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Validate checks the fields every provider needs.
func (m Message) Validate() error {
	if !looksLikeAddress(m.To) || strings.TrimSpace(m.Subject) == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Mailer sends a message. Implementations must honour ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// Discard drops every message; used when mail is disabled.
type Discard struct{}

// Send implements Mailer.
func (Discard) Send(context.Context, Message) error { return nil }

// Name implements Mailer.
func (Discard) Name() string { return "none" }

func looksLikeAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndex(addr, "@")
	return at > 0 && at < len(addr)-1 && strings.Contains(addr[at+1:], ".")
}
