package domain

import "time"

// Account status values. Status transitions are administrative and
// independent of the linked tenant's lifecycle.
const (
	AccountActive            = "active"
	AccountSuspended         = "suspended"
	AccountCanceled          = "canceled"
	AccountPendingActivation = "pending-activation"
)

// ValidAccountStatus reports whether s is a known account status.
func ValidAccountStatus(s string) bool {
	switch s {
	case AccountActive, AccountSuspended, AccountCanceled, AccountPendingActivation:
		return true
	}
	return false
}

// Account is the login principal created for a provisioned requester.
// Handle and email are globally unique across all accounts.
type Account struct {
	ID           string
	Handle       string
	SecretHash   string
	FullName     string
	Email        string
	Phone        string
	SalonName    string
	Plan         string
	Status       string
	StatusReason string
	TenantSlug   string
	RequestID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
