// Package notifier delivers transactional mail to newly provisioned salon
// owners.
package notifier

import "context"

// CredentialsMessage is the welcome mail payload. The temporary secret is
// delivered exactly once and must never be logged.
type CredentialsMessage struct {
	To              string
	OwnerName       string
	SalonName       string
	TenantSlug      string
	Handle          string
	TemporarySecret string
	Plan            string
}

// Notifier sends provisioning notifications. Implementations must treat
// delivery as best-effort; the pipeline never rolls back on a send failure.
type Notifier interface {
	SendCredentials(ctx context.Context, msg CredentialsMessage) error
}

// Noop discards every notification. Used when outbound mail is disabled.
type Noop struct{}

var _ Notifier = Noop{}

func (Noop) SendCredentials(context.Context, CredentialsMessage) error { return nil }
