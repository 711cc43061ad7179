package notifier

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"
)

const sendTimeout = 15 * time.Second

var credentialsBody = template.Must(template.New("credentials").Parse(`Hello {{.OwnerName}},

Your salon {{.SalonName}} is ready.

Workspace: https://{{.TenantSlug}}.salonos.app
Login:     {{.Handle}}
Password:  {{.TemporarySecret}}

This password is temporary; you will be asked to change it on first login.
Your plan: {{.Plan}}.

Welcome aboard,
The SalonOS team
`))

// MailgunNotifier sends transactional mail through the Mailgun HTTP API.
type MailgunNotifier struct {
	mg     *mailgun.MailgunImpl
	sender string
	logger *zap.Logger
}

var _ Notifier = (*MailgunNotifier)(nil)

// NewMailgunNotifier creates a notifier for the given Mailgun domain.
func NewMailgunNotifier(domain, apiKey, sender string, logger *zap.Logger) *MailgunNotifier {
	return &MailgunNotifier{
		mg:     mailgun.NewMailgun(domain, apiKey),
		sender: sender,
		logger: logger,
	}
}

// SendCredentials delivers the welcome mail with the one-time credentials.
// The message body is the only place the temporary secret is allowed to
// appear; it must never reach the log.
func (n *MailgunNotifier) SendCredentials(ctx context.Context, msg CredentialsMessage) error {
	var body bytes.Buffer
	if err := credentialsBody.Execute(&body, msg); err != nil {
		return fmt.Errorf("render credentials mail: %w", err)
	}

	subject := fmt.Sprintf("Your %s workspace is ready", msg.SalonName)
	m := mailgun.NewMessage(n.sender, subject, body.String(), msg.To)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, id, err := n.mg.Send(ctx, m)
	if err != nil {
		return fmt.Errorf("send credentials mail: %w", err)
	}

	n.logger.Info("credentials mail sent",
		zap.String("to", msg.To),
		zap.String("tenant", msg.TenantSlug),
		zap.String("message_id", id),
	)
	return nil
}
