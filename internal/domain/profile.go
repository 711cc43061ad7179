package domain

// TenantProfile is the free-form business profile collected by the
// multi-step onboarding form. It travels inside the intake request and is
// what the materializer turns into tenant-scoped records.
type TenantProfile struct {
	BrandName    string              `json:"brandName"`
	Slogan       string              `json:"slogan"`
	LogoURL      string              `json:"logoUrl"`
	PaletteID    string              `json:"paletteId"`
	Hours        map[string]DayHours `json:"hours"`
	SocialLinks  map[string]string   `json:"socialLinks"`
	WhatsApp     string              `json:"whatsapp"`
	MapsLocation string              `json:"mapsLocation"`
	Services     []ServiceDraft      `json:"services"`
	Products     []ProductDraft      `json:"products"`
	Staff        []StaffDraft        `json:"staff"`
	CarouselURLs []string            `json:"carouselUrls"`
}

// DayHours is one weekday entry of the submitted schedule.
type DayHours struct {
	Open  bool   `json:"open"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ServiceDraft is a catalog service as submitted on the onboarding form.
type ServiceDraft struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration"`
	Active      *bool   `json:"active"`
	ImageURL    string  `json:"imageUrl"`
}

// ProductDraft is a catalog product as submitted on the onboarding form.
type ProductDraft struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	MinStock    int     `json:"minStock"`
	Active      *bool   `json:"active"`
	ImageURL    string  `json:"imageUrl"`
}

// StaffDraft is a staff member as submitted on the onboarding form.
type StaffDraft struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
	Active    *bool  `json:"active"`
	ImageURL  string `json:"imageUrl"`
}

// Drafted reports whether the optional active flag resolves to true. Drafts
// default to active unless explicitly disabled.
func Drafted(active *bool) bool {
	return active == nil || *active
}
