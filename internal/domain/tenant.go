package domain

import "time"

// Tenant provisioning marker values. Readers should only trust a tenant
// whose marker is complete; stale `provisioning` rows are candidates for
// reconciliation.
const (
	ProvisioningInProgress = "provisioning"
	ProvisioningComplete   = "complete"
)

// Tenant is a provisioned salon namespace. The slug is user-facing,
// globally unique and immutable.
type Tenant struct {
	Slug              string
	DisplayName       string
	Email             string
	Phone             string
	Address           string
	Status            string
	ProvisioningState string
	Features          FeatureFlags
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FeatureFlags enables tenant capabilities. New tenants start with the full
// set switched on.
type FeatureFlags struct {
	OnlineBooking      bool `json:"onlineBooking"`
	ServiceBooking     bool `json:"serviceBooking"`
	ProductSales       bool `json:"productSales"`
	ClientRegistration bool `json:"clientRegistration"`
	EmployeeManagement bool `json:"employeeManagement"`
	ImageUpload        bool `json:"imageUpload"`
	ReportGeneration   bool `json:"reportGeneration"`
	RealtimeHolds      bool `json:"realtimeHolds"`
}

// DefaultFeatures returns the flag set every new tenant starts with.
func DefaultFeatures() FeatureFlags {
	return FeatureFlags{
		OnlineBooking:      true,
		ServiceBooking:     true,
		ProductSales:       true,
		ClientRegistration: true,
		EmployeeManagement: true,
		ImageUpload:        true,
		ReportGeneration:   true,
		RealtimeHolds:      true,
	}
}

// TenantSettings holds the tenant's operating configuration: base hours,
// branding and landing-page toggles.
type TenantSettings struct {
	TenantSlug  string
	OpenTime    string
	CloseTime   string
	SlotMinutes int
	LogoURL     string
	PaletteID   string
	CustomCSS   string
	UI          UIToggles
}

// UIToggles controls which landing-page sections render and how many items
// each shows.
type UIToggles struct {
	MaxStaffHome    int  `json:"maxStaffHome"`
	MaxProductsHome int  `json:"maxProductsHome"`
	MaxServicesHome int  `json:"maxServicesHome"`
	MaxStaffBooking int  `json:"maxStaffBooking"`
	ShowCarousel    bool `json:"showCarousel"`
	ShowStaff       bool `json:"showStaff"`
	ShowProducts    bool `json:"showProducts"`
	ShowServices    bool `json:"showServices"`
	ShowFooter      bool `json:"showFooter"`
}

// DefaultUIToggles returns the landing-page defaults for a new tenant.
func DefaultUIToggles() UIToggles {
	return UIToggles{
		MaxStaffHome:    6,
		MaxProductsHome: 6,
		MaxServicesHome: 6,
		MaxStaffBooking: 6,
		ShowCarousel:    true,
		ShowStaff:       true,
		ShowProducts:    true,
		ShowServices:    true,
		ShowFooter:      true,
	}
}

// DefaultDurations is the fixed duration-option lookup set every tenant
// starts with.
var DefaultDurations = []string{"00:30", "01:00", "01:30", "02:00", "02:30", "03:00"}

// ContentBlock holds the tenant's landing-page copy: section titles, the
// footer and the carousel media references.
type ContentBlock struct {
	TenantSlug    string
	CarouselTitle string
	ServicesTitle string
	ProductsTitle string
	StaffTitle    string
	Footer        Footer
	CarouselURLs  []string
}

// Footer is the tenant's footer content block.
type Footer struct {
	Name         string            `json:"name"`
	Slogan       string            `json:"slogan"`
	Description  string            `json:"description"`
	Rights       string            `json:"rights"`
	Address      string            `json:"address"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	WhatsApp     string            `json:"whatsapp"`
	Hours        FooterHours       `json:"hours"`
	SocialLinks  map[string]string `json:"socialLinks"`
	MapsLocation string            `json:"mapsLocation"`
}

// FooterHours is the simplified schedule shown in the footer.
type FooterHours struct {
	WeekdayOpen   string `json:"weekdayOpen"`
	WeekdayClose  string `json:"weekdayClose"`
	SaturdayOpen  string `json:"saturdayOpen"`
	SaturdayClose string `json:"saturdayClose"`
	SundayOpen    string `json:"sundayOpen"`
	SundayClose   string `json:"sundayClose"`
}

// TenantScaffold groups the records committed as one atomic batch when a
// tenant is materialized: metadata, root marker, settings, the duration
// lookup set and the content blocks.
type TenantScaffold struct {
	Tenant    Tenant
	Settings  TenantSettings
	Durations []string
	Content   ContentBlock
}

// TenantUser is a login record scoped to a single tenant workspace.
type TenantUser struct {
	ID         string
	TenantSlug string
	Alias      string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Role       string
	SecretHash string
	IsStylist  bool
	CreatedAt  time.Time
}

// Catalog item kinds.
const (
	CatalogService = "service"
	CatalogProduct = "product"
)

// CatalogItem is a bookable service or sellable product owned by a tenant.
// Duration applies to services only, Stock to products only.
type CatalogItem struct {
	ID          string
	TenantSlug  string
	Kind        string
	Name        string
	Description string
	Category    string
	Price       float64
	Duration    string
	Stock       int
	MinStock    int
	Active      bool
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StaffMember is a bookable person on a tenant's roster.
type StaffMember struct {
	ID          string
	TenantSlug  string
	Name        string
	Specialty   string
	Relation    string
	Email       string
	Active      bool
	Placeholder bool
	ImageURL    string
	CreatedAt   time.Time
}
