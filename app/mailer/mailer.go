// Package mailer sends transactional email. There is a single Mailer
// interface with an SMTP implementation for production, a logging
// implementation for development and an in-memory one for tests.
package mailer

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidMessage = errors.New("invalid message")

type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.Join(ErrInvalidMessage, errors.New("recipient is required"))
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.Join(ErrInvalidMessage, errors.New("subject is required"))
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		return errors.Join(ErrInvalidMessage, errors.New("body is required"))
	}
	return nil
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
