package repository

import (
	"context"
	"errors"
	"time"

	"github.com/salonos/salonos-backoffice/internal/domain"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// IntakeFilter narrows intake request listings.
type IntakeFilter struct {
	Status string
	Plan   string
	Limit  int
	Offset int
}

// IntakeRepository persists onboarding applications. Requests are never
// deleted.
type IntakeRepository interface {
	Create(ctx context.Context, req domain.IntakeRequest) (domain.IntakeRequest, error)
	GetByID(ctx context.Context, id string) (domain.IntakeRequest, error)
	List(ctx context.Context, f IntakeFilter) ([]domain.IntakeRequest, error)
	UpdateStatus(ctx context.Context, id, status, notes string) error
	// LinkProvisioned sets the terminal provisioned state together with the
	// tenant and account linkage. It fails if the request is already linked.
	LinkProvisioned(ctx context.Context, id, tenantSlug, accountID string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// AccountRepository persists login principals. Handle and email carry
// unique constraints.
type AccountRepository interface {
	Create(ctx context.Context, a domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	HandleTaken(ctx context.Context, handle string) (bool, error)
	UpdateStatus(ctx context.Context, id, status, reason string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
	ActivePlanCounts(ctx context.Context) (map[string]int, error)
}

// TenantRepository owns the tenant identifier namespace and all
// tenant-scoped records.
type TenantRepository interface {
	SlugTaken(ctx context.Context, slug string) (bool, error)
	// ReserveSlug conditionally creates the identifier; false means another
	// caller holds it already.
	ReserveSlug(ctx context.Context, slug string) (bool, error)
	// CreateScaffold commits the tenant metadata, settings, duration lookup
	// set and content blocks as a single atomic batch.
	CreateScaffold(ctx context.Context, s domain.TenantScaffold) error
	CreateAdminUser(ctx context.Context, u domain.TenantUser) (string, error)
	CreateCatalogItem(ctx context.Context, item domain.CatalogItem) (string, error)
	CreateStaffMember(ctx context.Context, m domain.StaffMember) (string, error)
	// MarkProvisioned flips the provisioning marker to complete.
	MarkProvisioned(ctx context.Context, slug string) error
	// StaleProvisioning lists tenants whose marker has been stuck in the
	// provisioning state longer than the given age.
	StaleProvisioning(ctx context.Context, olderThan time.Duration) ([]string, error)
}

// StagedAssetRepository indexes media uploaded under temporary staging
// keys.
type StagedAssetRepository interface {
	// Record appends (or sets, for the logo) an uploaded asset URL under the
	// staging key, creating the set on first use.
	Record(ctx context.Context, key, requestID, category, url string) error
	Get(ctx context.Context, key string) (domain.StagedAssetSet, error)
	MarkPromoted(ctx context.Context, key string) error
	MarkRejected(ctx context.Context, key string) error
}
