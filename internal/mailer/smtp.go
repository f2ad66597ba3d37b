package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hugh/teamly/pkg/config"
)

// SMTPMailer sends invitation emails over plain SMTP. When no credentials
// are configured (local development), the message is logged instead of sent
// and reported as delivered.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) SendInvitation(ctx context.Context, email InvitationEmail) (bool, string) {
	subject := fmt.Sprintf("%s invited you to join %s", email.InviterName, email.TeamName)
	body := fmt.Sprintf(
		"%s has invited you to join the team %q as %s.\r\n\r\n"+
			"Accept the invitation here:\r\n%s\r\n\r\n"+
			"The link expires in 7 days.\r\n",
		email.InviterName, email.TeamName, email.Role, email.Link,
	)

	if m.cfg.Host == "localhost" || m.cfg.Username == "" {
		m.logger.Info("development mode, invitation email logged instead of sent",
			"to", email.ToEmail,
			"subject", subject,
			"link", email.Link,
		)
		return true, "development mode - email logged"
	}

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.cfg.FromName, m.cfg.FromEmail, email.ToEmail, subject, body,
	))

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.FromEmail, []string{email.ToEmail}, msg); err != nil {
		m.logger.Warn("failed to send invitation email", "to", email.ToEmail, "error", err)
		return false, err.Error()
	}

	m.logger.Info("invitation email sent", "to", email.ToEmail)
	return true, "sent via smtp"
}
