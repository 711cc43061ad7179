package provisioning_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/domain"
	"github.com/salonos/salonos-backoffice/internal/media"
	"github.com/salonos/salonos-backoffice/internal/provisioning"
)

func TestMaterializePadsStaffToMinimum(t *testing.T) {
	cases := []struct {
		supplied int
		want     int
	}{
		{supplied: 0, want: 6},
		{supplied: 4, want: 6},
		{supplied: 7, want: 7},
	}

	for _, tc := range cases {
		repo := newMemoryTenantRepo()
		mat := provisioning.NewMaterializer(repo, zap.NewNop())

		in := baseInput("bellaspa")
		for i := 0; i < tc.supplied; i++ {
			in.Profile.Staff = append(in.Profile.Staff, domain.StaffDraft{Name: "Stylist " + strconv.Itoa(i+1)})
		}

		res, err := mat.Materialize(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, tc.want, res.Staff, "supplied %d", tc.supplied)
		require.Len(t, repo.staff, tc.want)

		placeholders := 0
		for _, m := range repo.staff {
			if m.Placeholder {
				placeholders++
			}
		}
		wantPlaceholders := tc.want - tc.supplied
		if wantPlaceholders < 0 {
			wantPlaceholders = 0
		}
		require.Equal(t, wantPlaceholders, placeholders)
	}
}

func TestMaterializeEmptyCatalogsGetPlaceholders(t *testing.T) {
	repo := newMemoryTenantRepo()
	mat := provisioning.NewMaterializer(repo, zap.NewNop())

	res, err := mat.Materialize(context.Background(), baseInput("bellaspa"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Services)
	require.Equal(t, 1, res.Products)

	require.Len(t, repo.items, 2)
	require.Equal(t, "Classic Haircut", repo.items[0].Name)
	require.Equal(t, domain.CatalogService, repo.items[0].Kind)
	require.Equal(t, "Professional Shampoo", repo.items[1].Name)
	require.Equal(t, domain.CatalogProduct, repo.items[1].Kind)
}

func TestMaterializeSuppliedCatalog(t *testing.T) {
	repo := newMemoryTenantRepo()
	mat := provisioning.NewMaterializer(repo, zap.NewNop())

	off := false
	in := baseInput("bellaspa")
	in.Profile.Services = []domain.ServiceDraft{
		{Name: "Cut", Price: 20, Duration: "01:00"},
		{Name: "Color", Active: &off},
	}
	in.Profile.Products = []domain.ProductDraft{{Name: "Wax", Price: 8, Stock: 3}}
	in.Assets.Services = []media.PromotedAsset{{URL: "https://cdn/bellaspa/services/service1", Promoted: true}}

	res, err := mat.Materialize(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 2, res.Services)
	require.Equal(t, 1, res.Products)

	require.Equal(t, "https://cdn/bellaspa/services/service1", repo.items[0].ImageURL)
	require.True(t, repo.items[0].Active)
	require.False(t, repo.items[1].Active)
}

func TestMaterializeScaffoldAndAdmin(t *testing.T) {
	repo := newMemoryTenantRepo()
	mat := provisioning.NewMaterializer(repo, zap.NewNop())

	in := baseInput("bellaspa")
	in.Profile.BrandName = "Bella Spa Deluxe"
	in.Assets.Logo = media.PromotedAsset{URL: "https://cdn/bellaspa/logos/logo", Promoted: true}

	_, err := mat.Materialize(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, repo.scaffolds, 1)
	scaffold := repo.scaffolds[0]
	require.Equal(t, "Bella Spa Deluxe", scaffold.Tenant.DisplayName)
	require.Equal(t, "https://cdn/bellaspa/logos/logo", scaffold.Settings.LogoURL)
	require.Equal(t, domain.DefaultDurations, scaffold.Durations)
	require.Equal(t, "Welcome to Bella Spa Deluxe", scaffold.Content.CarouselTitle)

	require.Len(t, repo.users, 1)
	admin := repo.users[0]
	require.Equal(t, "admin", admin.Alias)
	require.Equal(t, "salon-admin", admin.Role)
	require.Equal(t, "Ana", admin.FirstName)
	require.Equal(t, "Lopez", admin.LastName)
	require.Equal(t, "$2hash", admin.SecretHash)
}

func TestMaterializeCollectsPartialFailures(t *testing.T) {
	repo := newMemoryTenantRepo()
	repo.catalogErr = errors.New("write refused")
	mat := provisioning.NewMaterializer(repo, zap.NewNop())

	res, err := mat.Materialize(context.Background(), baseInput("bellaspa"))
	require.NoError(t, err)
	require.True(t, res.Partial())
	require.Contains(t, res.Failed, "service:placeholder")
	require.Contains(t, res.Failed, "product:placeholder")
	require.Equal(t, 6, res.Staff)
}

func TestMaterializeScaffoldFailureAborts(t *testing.T) {
	repo := newMemoryTenantRepo()
	repo.scaffoldErr = errors.New("batch refused")
	mat := provisioning.NewMaterializer(repo, zap.NewNop())

	_, err := mat.Materialize(context.Background(), baseInput("bellaspa"))
	require.Error(t, err)
	require.Empty(t, repo.users)
	require.Empty(t, repo.items)
}

func baseInput(tenantSlug string) provisioning.MaterializeInput {
	return provisioning.MaterializeInput{
		Slug:            tenantSlug,
		SalonName:       "Bella Spa",
		OwnerName:       "Ana Lopez",
		Email:           "a@b.com",
		Phone:           "+1555",
		Address:         "1 Main St",
		AdminSecretHash: "$2hash",
	}
}

type memoryTenantRepo struct {
	slugs       map[string]bool
	provisioned map[string]bool
	scaffolds   []domain.TenantScaffold
	users       []domain.TenantUser
	items       []domain.CatalogItem
	staff       []domain.StaffMember
	scaffoldErr error
	catalogErr  error
	staffErr    error
}

func newMemoryTenantRepo() *memoryTenantRepo {
	return &memoryTenantRepo{
		slugs:       make(map[string]bool),
		provisioned: make(map[string]bool),
	}
}

func (r *memoryTenantRepo) SlugTaken(_ context.Context, s string) (bool, error) {
	return r.slugs[s], nil
}

func (r *memoryTenantRepo) ReserveSlug(_ context.Context, s string) (bool, error) {
	if r.slugs[s] {
		return false, nil
	}
	r.slugs[s] = true
	return true, nil
}

func (r *memoryTenantRepo) CreateScaffold(_ context.Context, s domain.TenantScaffold) error {
	if r.scaffoldErr != nil {
		return r.scaffoldErr
	}
	r.scaffolds = append(r.scaffolds, s)
	return nil
}

func (r *memoryTenantRepo) CreateAdminUser(_ context.Context, u domain.TenantUser) (string, error) {
	r.users = append(r.users, u)
	return "user-" + strconv.Itoa(len(r.users)), nil
}

func (r *memoryTenantRepo) CreateCatalogItem(_ context.Context, item domain.CatalogItem) (string, error) {
	if r.catalogErr != nil {
		return "", r.catalogErr
	}
	r.items = append(r.items, item)
	return "item-" + strconv.Itoa(len(r.items)), nil
}

func (r *memoryTenantRepo) CreateStaffMember(_ context.Context, m domain.StaffMember) (string, error) {
	if r.staffErr != nil {
		return "", r.staffErr
	}
	r.staff = append(r.staff, m)
	return "staff-" + strconv.Itoa(len(r.staff)), nil
}

func (r *memoryTenantRepo) MarkProvisioned(_ context.Context, s string) error {
	r.provisioned[s] = true
	return nil
}

func (r *memoryTenantRepo) StaleProvisioning(context.Context, time.Duration) ([]string, error) {
	return nil, nil
}
