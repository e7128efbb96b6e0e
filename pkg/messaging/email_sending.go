// Package messaging delivers the portal's notification mails. Delivery
// failures are logged and swallowed so a broken mail transport never blocks a
// user visible flow.
package messaging

import (
	"log/slog"
)

const passwordResetSubject = "Password reset requested"

const passwordResetTemplate = `<html>
<body>
<p>Hello {{.name}},</p>
<p>We received a request to reset the password of your account.</p>
<p><a href="{{.resetURL}}">Set a new password</a></p>
<p>The link is valid for {{.validUntil}} hours. If you did not request this, you can ignore this message.</p>
</body>
</html>`

// MailClient is the transport; *smtp_client.Mailer satisfies it.
type MailClient interface {
	SendMail(to []string, subject string, htmlContent string) error
}

type EmailService struct {
	client MailClient
}

func NewEmailService(client MailClient) *EmailService {
	return &EmailService{client: client}
}

// SendPasswordResetEmail renders and sends the reset link mail. The bool
// return is for observability only, callers must not change flow outcome
// based on it.
func (s *EmailService) SendPasswordResetEmail(to string, name string, resetURL string, validUntilHours string) bool {
	content, err := ResolveTemplate(
		"password-reset",
		passwordResetTemplate,
		map[string]string{
			"name":       name,
			"resetURL":   resetURL,
			"validUntil": validUntilHours,
		},
	)
	if err != nil {
		slog.Error("failed to resolve password reset template", slog.String("error", err.Error()))
		return false
	}

	if err := s.client.SendMail([]string{to}, passwordResetSubject, content); err != nil {
		slog.Error("failed to send password reset email", slog.String("error", err.Error()))
		return false
	}
	slog.Debug("password reset email sent", slog.String("email", to))
	return true
}
