package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/taskhive/taskhive/pkg/taskhive/logging"
)

// mailgunSender delivers invites through the Mailgun API
type mailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
}

func newMailgunSender(domain, apiKey, from string) *mailgunSender {
	return &mailgunSender{
		mg:   mailgun.NewMailgun(domain, apiKey),
		from: from,
	}
}

func (s *mailgunSender) SendInvite(recipientEmail string, invite Invite) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subject := fmt.Sprintf("You have been invited to %s", invite.WorkspaceTitle)
	body := fmt.Sprintf("%s invited you to the workspace %q.\n\nAccept the invitation: %s\n",
		invite.InviterName, invite.WorkspaceTitle, invite.AcceptURL)

	message := s.mg.NewMessage(s.from, subject, body)
	if err := message.AddRecipient(recipientEmail); err != nil {
		return err
	}

	_, id, err := s.mg.Send(ctx, message)
	if err != nil {
		return err
	}
	logging.Log.WithFields(logging.Fields{"id": id, "to": recipientEmail}).Info("invite email queued")
	return nil
}
