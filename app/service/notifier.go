package service

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/vibast-solutions/ms-go-webauth/app/mailer"
	"github.com/vibast-solutions/ms-go-webauth/app/metrics"
	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/sirupsen/logrus"
)

const (
	MailKindPasswordReset = "password_reset"
	MailKindWelcome       = "welcome"
)

type AsyncRunner func(task func())

type NotifierOption func(*Notifier)

func WithAsyncRunner(runner AsyncRunner) NotifierOption {
	return func(n *Notifier) {
		if runner != nil {
			n.asyncRunner = runner
		}
	}
}

func WithNotifierMetrics(m *metrics.Metrics) NotifierOption {
	return func(n *Notifier) {
		n.metrics = m
	}
}

// Notifier composes transactional emails and hands them to the mailer off the
// request path. Delivery failures are logged and counted, never returned.
type Notifier struct {
	mailer      mailer.Mailer
	cfg         *config.Config
	metrics     *metrics.Metrics
	asyncRunner AsyncRunner
}

func NewNotifier(m mailer.Mailer, cfg *config.Config, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		mailer: m,
		cfg:    cfg,
		asyncRunner: func(task func()) {
			go task()
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) SendPasswordReset(email, token string) {
	link := n.cfg.ResetURL(token)
	n.dispatch(MailKindPasswordReset, mailer.Message{
		To:       email,
		Subject:  "Password Reset",
		TextBody: fmt.Sprintf("You requested a password reset.\n\nOpen %s to set a new password. The link expires in %s.\n", link, formatTTL(n.cfg.Tokens.ResetTTL)),
		HTMLBody: fmt.Sprintf(`<p>You requested a password reset</p>
<p>Click this <a href="%s">link</a> to set a new password. The link expires in %s.</p>`,
			template.HTMLEscapeString(link), formatTTL(n.cfg.Tokens.ResetTTL)),
	})
}

func (n *Notifier) SendWelcome(email string) {
	loginURL := n.cfg.HTTP.BaseURL + "/login"
	n.dispatch(MailKindWelcome, mailer.Message{
		To:       email,
		Subject:  "Signup succeeded",
		TextBody: fmt.Sprintf("Your account has been created. You can log in at %s\n", loginURL),
		HTMLBody: fmt.Sprintf(`<h1>You successfully signed up!</h1>
<p>You can now <a href="%s">log in</a>.</p>`, template.HTMLEscapeString(loginURL)),
	})
}

func (n *Notifier) dispatch(kind string, msg mailer.Message) {
	n.asyncRunner(func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.cfg.Mail.SendTimeout)
		defer cancel()

		entry := logrus.WithFields(logrus.Fields{
			"kind": kind,
			"to":   msg.To,
		})
		if err := n.mailer.Send(ctx, msg); err != nil {
			n.metrics.Mail(kind, metrics.ResultFailed)
			entry.WithError(err).Error("Failed to send email")
			return
		}
		n.metrics.Mail(kind, metrics.ResultSent)
		entry.Info("Email sent")
	})
}

func formatTTL(d time.Duration) string {
	if d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
