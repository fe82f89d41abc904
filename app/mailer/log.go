package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer logs messages instead of delivering them. It logs recipients and
// full bodies, reset links included, so it is for development only.
type LogMailer struct {
	from   string
	logger logrus.FieldLogger
}

func NewLogMailer(from string, logger logrus.FieldLogger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{
		"from":      m.from,
		"to":        msg.To,
		"subject":   msg.Subject,
		"text_body": msg.TextBody,
	}).Info("Email sent (log driver)")
	return nil
}
