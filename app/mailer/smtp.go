package mailer

import (
	"context"
	"fmt"
	"sync"

	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// SMTPMailer opens one connection per message. Sends are serialised because
// the client keeps per-connection state.
type SMTPMailer struct {
	mu     sync.Mutex
	from   string
	client *mail.Client
}

func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(cfg.SendTimeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPMailer{from: cfg.From, client: client}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	out, err := buildMsg(m.from, msg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err = m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMsg(from string, msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetMessageIDWithValue(uuid.NewString() + "@webauth")
	out.SetDate()

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		out.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		out.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	default:
		out.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}

	return out, nil
}
