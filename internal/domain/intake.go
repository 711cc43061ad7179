package domain

import "time"

// Intake request lifecycle states. `provisioned` and `rejected` are terminal.
const (
	RequestPending          = "pending"
	RequestContacted        = "contacted"
	RequestApprovedPending  = "approved-pending-payment"
	RequestPaymentConfirmed = "payment-confirmed"
	RequestProvisioning     = "provisioning"
	RequestProvisioned      = "provisioned"
	RequestRejected         = "rejected"
)

var requestTransitions = map[string][]string{
	RequestPending:          {RequestContacted, RequestRejected},
	RequestContacted:        {RequestApprovedPending, RequestRejected},
	RequestApprovedPending:  {RequestPaymentConfirmed, RequestRejected},
	RequestPaymentConfirmed: {RequestProvisioning, RequestRejected},
	RequestProvisioning:     {RequestProvisioned, RequestRejected},
}

// ValidRequestStatus reports whether s names a known lifecycle state.
func ValidRequestStatus(s string) bool {
	switch s {
	case RequestPending, RequestContacted, RequestApprovedPending,
		RequestPaymentConfirmed, RequestProvisioning, RequestProvisioned, RequestRejected:
		return true
	}
	return false
}

// CanTransition reports whether an intake request may move from one state to
// another. Any non-terminal state may be rejected.
func CanTransition(from, to string) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IntakeRequest is a prospective tenant's submitted onboarding application.
// Requests are never deleted; rejected ones stay behind as an audit trail.
type IntakeRequest struct {
	ID         string
	SalonName  string
	OwnerName  string
	Email      string
	Phone      string
	Address    string
	City       string
	Country    string
	Plan       string
	Notes      string
	StagingKey string
	Profile    TenantProfile
	Status     string

	// Linkage set exactly once by the provisioning pipeline.
	AccountID  string
	TenantSlug string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Provisioned reports whether the request has already produced a tenant.
func (r IntakeRequest) Provisioned() bool {
	return r.TenantSlug != ""
}
