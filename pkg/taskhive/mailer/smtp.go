package mailer

import (
	"fmt"
	"net/smtp"
)

// smtpSender delivers invites through a plain SMTP relay
type smtpSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func (s *smtpSender) SendInvite(recipientEmail string, invite Invite) error {
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	subject := fmt.Sprintf("You have been invited to %s", invite.WorkspaceTitle)
	body := fmt.Sprintf("%s invited you to the workspace %q.\n\nAccept the invitation: %s\n",
		invite.InviterName, invite.WorkspaceTitle, invite.AcceptURL)
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s", recipientEmail, subject, body))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, auth, s.from, []string{recipientEmail}, msg)
}
