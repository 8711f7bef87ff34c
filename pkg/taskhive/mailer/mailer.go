// Package mailer sends transactional invite emails behind a provider-agnostic
// Sender interface. Delivery is best-effort; callers log failures and move on.
package mailer

import (
	"github.com/taskhive/taskhive/pkg/taskhive/config"
	"github.com/taskhive/taskhive/pkg/taskhive/logging"
)

// Invite is the payload of a workspace invitation email
type Invite struct {
	WorkspaceTitle string
	InviterName    string
	AcceptURL      string
}

// Sender delivers invitation emails through a configured provider
type Sender interface {
	SendInvite(recipientEmail string, invite Invite) error
}

// NewSender creates a Sender from configuration. The "none" provider (the
// default) logs instead of sending, which keeps local development quiet.
func NewSender(cfg *config.Config) Sender {
	switch cfg.Email.Provider {
	case "smtp":
		return &smtpSender{
			host:     cfg.Email.SMTP.Host,
			port:     cfg.Email.SMTP.Port,
			username: cfg.Email.SMTP.Username,
			password: cfg.Email.SMTP.Password,
			from:     cfg.Email.From,
		}
	case "mailgun":
		return newMailgunSender(cfg.Email.Mailgun.Domain, cfg.Email.Mailgun.APIKey, cfg.Email.From)
	}
	return &logSender{}
}

// logSender is the no-op provider used when email is not configured
type logSender struct{}

func (s *logSender) SendInvite(recipientEmail string, invite Invite) error {
	logging.Log.WithFields(logging.Fields{
		"to":        recipientEmail,
		"workspace": invite.WorkspaceTitle,
	}).Info("email provider not configured, skipping invite email")
	return nil
}
