package provisioning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/domain"
	"github.com/salonos/salonos-backoffice/internal/media"
	"github.com/salonos/salonos-backoffice/internal/repository"
)

// MinStaffCount is the roster floor: every tenant starts with at least this
// many bookable staff entries, padded with placeholders when the form
// supplied fewer.
const MinStaffCount = 6

const (
	defaultOpenTime    = "05:00"
	defaultCloseTime   = "22:00"
	defaultSlotMinutes = 30
	defaultPaletteID   = "palette1"
	adminRole          = "salon-admin"
)

// MaterializeInput carries everything needed to write a tenant workspace.
type MaterializeInput struct {
	Slug            string
	SalonName       string
	OwnerName       string
	Email           string
	Phone           string
	Address         string
	Profile         domain.TenantProfile
	Assets          media.PromotedSet
	AdminSecretHash string
}

// MaterializationResult reports what was created so the caller can verify
// completeness. Failed lists individual best-effort writes that did not
// land.
type MaterializationResult struct {
	Services int
	Products int
	Staff    int
	Failed   []string
}

// Partial reports whether any best-effort write failed after the scaffold
// batch committed.
func (r MaterializationResult) Partial() bool {
	return len(r.Failed) > 0
}

// Materializer writes the full set of tenant-scoped records for an
// allocated identifier. The scaffold commits atomically; the admin user,
// catalog and staff writes are sequential and best-effort.
type Materializer struct {
	tenants repository.TenantRepository
	logger  *zap.Logger
}

// NewMaterializer creates a materializer over the tenant store.
func NewMaterializer(tenants repository.TenantRepository, logger *zap.Logger) *Materializer {
	return &Materializer{tenants: tenants, logger: logger}
}

// Materialize writes the tenant workspace. A scaffold or admin-user failure
// aborts with an error; individual catalog/staff failures are collected in
// the result and never roll back what already committed.
func (m *Materializer) Materialize(ctx context.Context, in MaterializeInput) (MaterializationResult, error) {
	var res MaterializationResult

	if err := m.tenants.CreateScaffold(ctx, buildScaffold(in)); err != nil {
		return res, fmt.Errorf("materialize scaffold: %w", err)
	}

	if _, err := m.tenants.CreateAdminUser(ctx, buildAdminUser(in)); err != nil {
		return res, fmt.Errorf("materialize admin user: %w", err)
	}

	m.writeServices(ctx, in, &res)
	m.writeProducts(ctx, in, &res)
	m.writeStaff(ctx, in, &res)

	if res.Partial() {
		m.logger.Warn("tenant materialized with failed writes",
			zap.String("tenant", in.Slug),
			zap.Strings("failed", res.Failed),
		)
	}

	return res, nil
}

func buildScaffold(in MaterializeInput) domain.TenantScaffold {
	display := in.Profile.BrandName
	if display == "" {
		display = in.SalonName
	}

	logoURL := in.Assets.Logo.URL
	if logoURL == "" {
		logoURL = in.Profile.LogoURL
	}

	palette := in.Profile.PaletteID
	if palette == "" {
		palette = defaultPaletteID
	}

	slogan := in.Profile.Slogan
	if slogan == "" {
		slogan = "Your trusted beauty salon"
	}

	whatsapp := in.Profile.WhatsApp
	if whatsapp == "" {
		whatsapp = in.Phone
	}

	carousel := make([]string, 0, len(in.Assets.Gallery))
	for _, a := range in.Assets.Gallery {
		carousel = append(carousel, a.URL)
	}
	if len(carousel) == 0 {
		carousel = in.Profile.CarouselURLs
	}

	return domain.TenantScaffold{
		Tenant: domain.Tenant{
			Slug:        in.Slug,
			DisplayName: display,
			Email:       in.Email,
			Phone:       in.Phone,
			Address:     in.Address,
			Status:      "active",
			Features:    domain.DefaultFeatures(),
		},
		Settings: domain.TenantSettings{
			TenantSlug:  in.Slug,
			OpenTime:    defaultOpenTime,
			CloseTime:   defaultCloseTime,
			SlotMinutes: defaultSlotMinutes,
			LogoURL:     logoURL,
			PaletteID:   palette,
			UI:          domain.DefaultUIToggles(),
		},
		Durations: domain.DefaultDurations,
		Content: domain.ContentBlock{
			TenantSlug:    in.Slug,
			CarouselTitle: "Welcome to " + display,
			ServicesTitle: "Our services",
			ProductsTitle: "Our products",
			StaffTitle:    "Our team",
			Footer: domain.Footer{
				Name:         display,
				Slogan:       slogan,
				Description:  slogan,
				Rights:       fmt.Sprintf("© %d %s. All rights reserved.", time.Now().Year(), display),
				Address:      in.Address,
				Email:        in.Email,
				Phone:        in.Phone,
				WhatsApp:     whatsapp,
				Hours:        footerHours(in.Profile.Hours),
				SocialLinks:  in.Profile.SocialLinks,
				MapsLocation: in.Profile.MapsLocation,
			},
			CarouselURLs: carousel,
		},
	}
}

func footerHours(hours map[string]domain.DayHours) domain.FooterHours {
	out := domain.FooterHours{
		WeekdayOpen:   "09:00",
		WeekdayClose:  "18:00",
		SaturdayOpen:  "09:00",
		SaturdayClose: "14:00",
		SundayOpen:    "Closed",
		SundayClose:   "Closed",
	}

	if d, ok := hours["monday"]; ok && d.Open {
		out.WeekdayOpen, out.WeekdayClose = pick(d.Start, out.WeekdayOpen), pick(d.End, out.WeekdayClose)
	}
	if d, ok := hours["saturday"]; ok && d.Open {
		out.SaturdayOpen, out.SaturdayClose = pick(d.Start, out.SaturdayOpen), pick(d.End, out.SaturdayClose)
	}
	if d, ok := hours["sunday"]; ok && d.Open {
		out.SundayOpen, out.SundayClose = pick(d.Start, "09:00"), pick(d.End, "15:00")
	}
	return out
}

func pick(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func buildAdminUser(in MaterializeInput) domain.TenantUser {
	first, last := splitName(in.OwnerName)
	return domain.TenantUser{
		TenantSlug: in.Slug,
		Alias:      "admin",
		FirstName:  first,
		LastName:   last,
		Email:      in.Email,
		Phone:      in.Phone,
		Role:       adminRole,
		SecretHash: in.AdminSecretHash,
	}
}

func splitName(full string) (string, string) {
	tokens := strings.Fields(strings.TrimSpace(full))
	switch len(tokens) {
	case 0:
		return "Administrator", "Principal"
	case 1:
		return tokens[0], "Principal"
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}

func (m *Materializer) writeServices(ctx context.Context, in MaterializeInput, res *MaterializationResult) {
	drafts := in.Profile.Services
	if len(drafts) == 0 {
		// Demonstration placeholder so the tenant is never catalog-empty.
		item := domain.CatalogItem{
			TenantSlug:  in.Slug,
			Kind:        domain.CatalogService,
			Name:        "Classic Haircut",
			Description: "Professional haircut",
			Category:    "general",
			Price:       10,
			Duration:    "00:30",
			Active:      true,
		}
		m.writeCatalogItem(ctx, item, "service:placeholder", res)
		return
	}

	for i, d := range drafts {
		price := d.Price
		if price <= 0 {
			price = 10
		}
		duration := d.Duration
		if duration == "" {
			duration = "00:30"
		}
		item := domain.CatalogItem{
			TenantSlug:  in.Slug,
			Kind:        domain.CatalogService,
			Name:        d.Name,
			Description: d.Description,
			Category:    "general",
			Price:       price,
			Duration:    duration,
			Active:      domain.Drafted(d.Active),
			ImageURL:    media.URLAt(in.Assets.Services, i, d.ImageURL),
		}
		m.writeCatalogItem(ctx, item, fmt.Sprintf("service:%d", i+1), res)
	}
}

func (m *Materializer) writeProducts(ctx context.Context, in MaterializeInput, res *MaterializationResult) {
	drafts := in.Profile.Products
	if len(drafts) == 0 {
		item := domain.CatalogItem{
			TenantSlug:  in.Slug,
			Kind:        domain.CatalogProduct,
			Name:        "Professional Shampoo",
			Description: "Professional shampoo for all hair types",
			Category:    "care",
			Price:       15,
			Stock:       10,
			MinStock:    5,
			Active:      true,
		}
		m.writeCatalogItem(ctx, item, "product:placeholder", res)
		return
	}

	for i, d := range drafts {
		price := d.Price
		if price <= 0 {
			price = 15
		}
		stock := d.Stock
		if stock <= 0 {
			stock = 10
		}
		minStock := d.MinStock
		if minStock <= 0 {
			minStock = 5
		}
		item := domain.CatalogItem{
			TenantSlug:  in.Slug,
			Kind:        domain.CatalogProduct,
			Name:        d.Name,
			Description: d.Description,
			Category:    "care",
			Price:       price,
			Stock:       stock,
			MinStock:    minStock,
			Active:      domain.Drafted(d.Active),
			ImageURL:    media.URLAt(in.Assets.Products, i, d.ImageURL),
		}
		m.writeCatalogItem(ctx, item, fmt.Sprintf("product:%d", i+1), res)
	}
}

func (m *Materializer) writeCatalogItem(ctx context.Context, item domain.CatalogItem, label string, res *MaterializationResult) {
	if _, err := m.tenants.CreateCatalogItem(ctx, item); err != nil {
		m.logger.Warn("catalog write failed",
			zap.String("tenant", item.TenantSlug),
			zap.String("item", label),
			zap.Error(err),
		)
		res.Failed = append(res.Failed, label)
		return
	}
	if item.Kind == domain.CatalogService {
		res.Services++
	} else {
		res.Products++
	}
}

func (m *Materializer) writeStaff(ctx context.Context, in MaterializeInput, res *MaterializationResult) {
	for i, d := range in.Profile.Staff {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("Stylist %d", i+1)
		}
		specialty := d.Specialty
		if specialty == "" {
			specialty = "General"
		}
		member := domain.StaffMember{
			TenantSlug: in.Slug,
			Name:       name,
			Specialty:  specialty,
			Relation:   fmt.Sprintf("employee%d", i+1),
			Email:      d.Email,
			Active:     domain.Drafted(d.Active),
			ImageURL:   media.URLAt(in.Assets.Staff, i, d.ImageURL),
		}
		m.writeStaffMember(ctx, member, fmt.Sprintf("staff:%d", i+1), res)
	}

	// Pad the roster with placeholders up to the minimum headcount.
	for n := res.Staff + 1; res.Staff < MinStaffCount; n++ {
		member := domain.StaffMember{
			TenantSlug:  in.Slug,
			Name:        fmt.Sprintf("Stylist %d", n),
			Specialty:   "General",
			Relation:    fmt.Sprintf("employee%d", n),
			Active:      true,
			Placeholder: true,
		}
		label := fmt.Sprintf("staff:placeholder:%d", n)
		before := res.Staff
		m.writeStaffMember(ctx, member, label, res)
		if res.Staff == before {
			// Store is rejecting writes; stop padding instead of looping.
			break
		}
	}
}

func (m *Materializer) writeStaffMember(ctx context.Context, member domain.StaffMember, label string, res *MaterializationResult) {
	if _, err := m.tenants.CreateStaffMember(ctx, member); err != nil {
		m.logger.Warn("staff write failed",
			zap.String("tenant", member.TenantSlug),
			zap.String("member", label),
			zap.Error(err),
		)
		res.Failed = append(res.Failed, label)
		return
	}
	res.Staff++
}
