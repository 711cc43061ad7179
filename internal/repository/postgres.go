package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonos/salonos-backoffice/internal/domain"
)

// Compile-time interface assertions.
var (
	_ IntakeRepository      = (*PostgresIntakeRepo)(nil)
	_ AccountRepository     = (*PostgresAccountRepo)(nil)
	_ TenantRepository      = (*PostgresTenantRepo)(nil)
	_ StagedAssetRepository = (*PostgresStagedAssetRepo)(nil)
)

// PostgresIntakeRepo implements IntakeRepository on pgx.
type PostgresIntakeRepo struct {
	db *pgxpool.Pool
}

func NewPostgresIntakeRepo(db *pgxpool.Pool) *PostgresIntakeRepo {
	return &PostgresIntakeRepo{db: db}
}

const intakeColumns = `id, salon_name, owner_name, email, phone, address, city, country,
plan, notes, staging_key, profile, status, account_id, tenant_slug, created_at, updated_at`

const insertIntakeSQL = `INSERT INTO intake_requests
(id, salon_name, owner_name, email, phone, address, city, country, plan, notes, staging_key, profile, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + intakeColumns

func (r *PostgresIntakeRepo) Create(ctx context.Context, req domain.IntakeRequest) (domain.IntakeRequest, error) {
	profile, err := json.Marshal(req.Profile)
	if err != nil {
		return domain.IntakeRequest{}, fmt.Errorf("encode profile: %w", err)
	}

	row := r.db.QueryRow(ctx, insertIntakeSQL,
		uuid.NewString(),
		req.SalonName,
		req.OwnerName,
		req.Email,
		req.Phone,
		req.Address,
		req.City,
		req.Country,
		req.Plan,
		req.Notes,
		req.StagingKey,
		profile,
		domain.RequestPending,
	)

	created, err := scanIntake(row)
	if err != nil {
		return domain.IntakeRequest{}, fmt.Errorf("create intake request: %w", err)
	}
	return created, nil
}

func (r *PostgresIntakeRepo) GetByID(ctx context.Context, id string) (domain.IntakeRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT `+intakeColumns+` FROM intake_requests WHERE id = $1`, id)
	req, err := scanIntake(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.IntakeRequest{}, ErrNotFound
	}
	if err != nil {
		return domain.IntakeRequest{}, fmt.Errorf("get intake request: %w", err)
	}
	return req, nil
}

func (r *PostgresIntakeRepo) List(ctx context.Context, f IntakeFilter) ([]domain.IntakeRequest, error) {
	query := `SELECT ` + intakeColumns + ` FROM intake_requests
WHERE ($1 = '' OR status = $1) AND ($2 = '' OR plan = $2)
ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, query, f.Status, f.Plan, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list intake requests: %w", err)
	}
	defer rows.Close()

	var out []domain.IntakeRequest
	for rows.Next() {
		req, err := scanIntake(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *PostgresIntakeRepo) UpdateStatus(ctx context.Context, id, status, notes string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE intake_requests SET status = $2, notes = $3, updated_at = now() WHERE id = $1`,
		id, status, notes,
	)
	if err != nil {
		return fmt.Errorf("update intake status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresIntakeRepo) LinkProvisioned(ctx context.Context, id, tenantSlug, accountID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE intake_requests
SET status = $2, tenant_slug = $3, account_id = $4, updated_at = now()
WHERE id = $1 AND tenant_slug = ''`,
		id, domain.RequestProvisioned, tenantSlug, accountID,
	)
	if err != nil {
		return fmt.Errorf("link provisioned request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("link provisioned request %s: already linked or missing", id)
	}
	return nil
}

func (r *PostgresIntakeRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countGrouped(ctx, r.db, `SELECT status, count(*) FROM intake_requests GROUP BY status`)
}

func scanIntake(row pgx.Row) (domain.IntakeRequest, error) {
	var (
		req     domain.IntakeRequest
		profile []byte
	)
	err := row.Scan(
		&req.ID, &req.SalonName, &req.OwnerName, &req.Email, &req.Phone,
		&req.Address, &req.City, &req.Country, &req.Plan, &req.Notes,
		&req.StagingKey, &profile, &req.Status, &req.AccountID, &req.TenantSlug,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return domain.IntakeRequest{}, err
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &req.Profile); err != nil {
			return domain.IntakeRequest{}, fmt.Errorf("decode profile: %w", err)
		}
	}
	return req, nil
}

// PostgresAccountRepo implements AccountRepository on pgx.
type PostgresAccountRepo struct {
	db *pgxpool.Pool
}

func NewPostgresAccountRepo(db *pgxpool.Pool) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

const accountColumns = `id, handle, secret_hash, full_name, email, phone, salon_name,
plan, status, status_reason, tenant_slug, request_id, created_at, updated_at`

const insertAccountSQL = `INSERT INTO accounts
(id, handle, secret_hash, full_name, email, phone, salon_name, plan, status, tenant_slug, request_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + accountColumns

func (r *PostgresAccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	status := a.Status
	if status == "" {
		status = domain.AccountActive
	}

	row := r.db.QueryRow(ctx, insertAccountSQL,
		uuid.NewString(),
		a.Handle,
		a.SecretHash,
		a.FullName,
		a.Email,
		a.Phone,
		a.SalonName,
		a.Plan,
		status,
		a.TenantSlug,
		a.RequestID,
	)

	created, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

func (r *PostgresAccountRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *PostgresAccountRepo) HandleTaken(ctx context.Context, handle string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE handle = $1)`, handle,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check handle: %w", err)
	}
	return taken, nil
}

func (r *PostgresAccountRepo) UpdateStatus(ctx context.Context, id, status, reason string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET status = $2, status_reason = $3, updated_at = now() WHERE id = $1`,
		id, status, reason,
	)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresAccountRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countGrouped(ctx, r.db, `SELECT status, count(*) FROM accounts GROUP BY status`)
}

func (r *PostgresAccountRepo) ActivePlanCounts(ctx context.Context) (map[string]int, error) {
	return countGrouped(ctx, r.db,
		`SELECT plan, count(*) FROM accounts WHERE status = 'active' GROUP BY plan`)
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.Handle, &a.SecretHash, &a.FullName, &a.Email, &a.Phone,
		&a.SalonName, &a.Plan, &a.Status, &a.StatusReason, &a.TenantSlug,
		&a.RequestID, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// PostgresTenantRepo implements TenantRepository on pgx. The scaffold batch
// runs inside one transaction; catalog and staff writes are individual.
type PostgresTenantRepo struct {
	db *pgxpool.Pool
}

func NewPostgresTenantRepo(db *pgxpool.Pool) *PostgresTenantRepo {
	return &PostgresTenantRepo{db: db}
}

func (r *PostgresTenantRepo) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenant_slugs WHERE slug = $1)`, slug,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return taken, nil
}

func (r *PostgresTenantRepo) ReserveSlug(ctx context.Context, slug string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO tenant_slugs (slug) VALUES ($1) ON CONFLICT (slug) DO NOTHING`, slug,
	)
	if err != nil {
		return false, fmt.Errorf("reserve slug: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresTenantRepo) CreateScaffold(ctx context.Context, s domain.TenantScaffold) error {
	features, err := json.Marshal(s.Tenant.Features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	ui, err := json.Marshal(s.Settings.UI)
	if err != nil {
		return fmt.Errorf("encode ui toggles: %w", err)
	}
	footer, err := json.Marshal(s.Content.Footer)
	if err != nil {
		return fmt.Errorf("encode footer: %w", err)
	}
	carousel, err := json.Marshal(s.Content.CarouselURLs)
	if err != nil {
		return fmt.Errorf("encode carousel: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin scaffold batch: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO tenants
(slug, display_name, email, phone, address, status, provisioning_state, features)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.Tenant.Slug, s.Tenant.DisplayName, s.Tenant.Email, s.Tenant.Phone,
		s.Tenant.Address, s.Tenant.Status, domain.ProvisioningInProgress, features,
	)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO tenant_settings
(tenant_slug, open_time, close_time, slot_minutes, logo_url, palette_id, custom_css, ui)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.Tenant.Slug, s.Settings.OpenTime, s.Settings.CloseTime, s.Settings.SlotMinutes,
		s.Settings.LogoURL, s.Settings.PaletteID, s.Settings.CustomCSS, ui,
	)
	if err != nil {
		return fmt.Errorf("insert tenant settings: %w", err)
	}

	for i, d := range s.Durations {
		_, err = tx.Exec(ctx,
			`INSERT INTO tenant_durations (tenant_slug, position, duration) VALUES ($1, $2, $3)`,
			s.Tenant.Slug, i+1, d,
		)
		if err != nil {
			return fmt.Errorf("insert duration option: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `INSERT INTO tenant_content
(tenant_slug, carousel_title, services_title, products_title, staff_title, footer, carousel_urls)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.Tenant.Slug, s.Content.CarouselTitle, s.Content.ServicesTitle,
		s.Content.ProductsTitle, s.Content.StaffTitle, footer, carousel,
	)
	if err != nil {
		return fmt.Errorf("insert tenant content: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit scaffold batch: %w", err)
	}
	return nil
}

func (r *PostgresTenantRepo) CreateAdminUser(ctx context.Context, u domain.TenantUser) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `INSERT INTO tenant_users
(id, tenant_slug, alias, first_name, last_name, email, phone, role, secret_hash, is_stylist)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, u.TenantSlug, u.Alias, u.FirstName, u.LastName, u.Email, u.Phone,
		u.Role, u.SecretHash, u.IsStylist,
	)
	if err != nil {
		return "", fmt.Errorf("insert tenant admin user: %w", err)
	}
	return id, nil
}

func (r *PostgresTenantRepo) CreateCatalogItem(ctx context.Context, item domain.CatalogItem) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `INSERT INTO catalog_items
(id, tenant_slug, kind, name, description, category, price, duration, stock, min_stock, active, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, item.TenantSlug, item.Kind, item.Name, item.Description, item.Category,
		item.Price, item.Duration, item.Stock, item.MinStock, item.Active, item.ImageURL,
	)
	if err != nil {
		return "", fmt.Errorf("insert catalog item: %w", err)
	}
	return id, nil
}

func (r *PostgresTenantRepo) CreateStaffMember(ctx context.Context, m domain.StaffMember) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `INSERT INTO staff_members
(id, tenant_slug, name, specialty, relation, email, active, placeholder, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, m.TenantSlug, m.Name, m.Specialty, m.Relation, m.Email,
		m.Active, m.Placeholder, m.ImageURL,
	)
	if err != nil {
		return "", fmt.Errorf("insert staff member: %w", err)
	}
	return id, nil
}

func (r *PostgresTenantRepo) MarkProvisioned(ctx context.Context, slug string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tenants SET provisioning_state = $2, updated_at = now() WHERE slug = $1`,
		slug, domain.ProvisioningComplete,
	)
	if err != nil {
		return fmt.Errorf("mark tenant provisioned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTenantRepo) StaleProvisioning(ctx context.Context, olderThan time.Duration) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slug FROM tenants WHERE provisioning_state = $1 AND created_at < now() - $2::interval`,
		domain.ProvisioningInProgress, fmt.Sprintf("%d seconds", int(olderThan.Seconds())),
	)
	if err != nil {
		return nil, fmt.Errorf("list stale provisioning: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan stale slug: %w", err)
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

// PostgresStagedAssetRepo implements StagedAssetRepository on pgx.
type PostgresStagedAssetRepo struct {
	db *pgxpool.Pool
}

func NewPostgresStagedAssetRepo(db *pgxpool.Pool) *PostgresStagedAssetRepo {
	return &PostgresStagedAssetRepo{db: db}
}

func (r *PostgresStagedAssetRepo) Record(ctx context.Context, key, requestID, category, url string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin staged asset update: %w", err)
	}
	defer tx.Rollback(ctx)

	set, err := getStagedAssets(ctx, tx, key, true)
	if errors.Is(err, pgx.ErrNoRows) {
		set = domain.StagedAssetSet{StagingKey: key, RequestID: requestID, Status: domain.StagedPending}
		if err := insertStagedAssets(ctx, tx, set); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("load staged assets: %w", err)
	}

	switch category {
	case domain.AssetLogo:
		set.Logo = url
	case domain.AssetGallery:
		set.Gallery = append(set.Gallery, url)
	case domain.AssetServices:
		set.Services = append(set.Services, url)
	case domain.AssetProducts:
		set.Products = append(set.Products, url)
	case domain.AssetStaff:
		set.Staff = append(set.Staff, url)
	default:
		return fmt.Errorf("unknown asset category %q", category)
	}

	if err := updateStagedAssets(ctx, tx, set); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit staged asset update: %w", err)
	}
	return nil
}

func (r *PostgresStagedAssetRepo) Get(ctx context.Context, key string) (domain.StagedAssetSet, error) {
	set, err := getStagedAssets(ctx, r.db, key, false)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StagedAssetSet{}, ErrNotFound
	}
	if err != nil {
		return domain.StagedAssetSet{}, fmt.Errorf("get staged assets: %w", err)
	}
	return set, nil
}

func (r *PostgresStagedAssetRepo) MarkPromoted(ctx context.Context, key string) error {
	return r.setStatus(ctx, key, domain.StagedPromoted)
}

func (r *PostgresStagedAssetRepo) MarkRejected(ctx context.Context, key string) error {
	return r.setStatus(ctx, key, domain.StagedRejected)
}

func (r *PostgresStagedAssetRepo) setStatus(ctx context.Context, key, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE staged_assets SET status = $2, updated_at = now() WHERE staging_key = $1`,
		key, status,
	)
	if err != nil {
		return fmt.Errorf("update staged asset status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getStagedAssets(ctx context.Context, q queryer, key string, forUpdate bool) (domain.StagedAssetSet, error) {
	query := `SELECT staging_key, request_id, logo, gallery, services, products, staff, status, created_at, updated_at
FROM staged_assets WHERE staging_key = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		set                               domain.StagedAssetSet
		gallery, services, products, staff []byte
	)
	err := q.QueryRow(ctx, query, key).Scan(
		&set.StagingKey, &set.RequestID, &set.Logo,
		&gallery, &services, &products, &staff,
		&set.Status, &set.CreatedAt, &set.UpdatedAt,
	)
	if err != nil {
		return domain.StagedAssetSet{}, err
	}

	for _, pair := range []struct {
		raw []byte
		dst *[]string
	}{
		{gallery, &set.Gallery},
		{services, &set.Services},
		{products, &set.Products},
		{staff, &set.Staff},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
				return domain.StagedAssetSet{}, fmt.Errorf("decode asset list: %w", err)
			}
		}
	}
	return set, nil
}

func insertStagedAssets(ctx context.Context, tx pgx.Tx, set domain.StagedAssetSet) error {
	_, err := tx.Exec(ctx, `INSERT INTO staged_assets
(staging_key, request_id, logo, gallery, services, products, staff, status)
VALUES ($1, $2, $3, '[]', '[]', '[]', '[]', $4)`,
		set.StagingKey, set.RequestID, set.Logo, set.Status,
	)
	if err != nil {
		return fmt.Errorf("insert staged assets: %w", err)
	}
	return nil
}

func updateStagedAssets(ctx context.Context, tx pgx.Tx, set domain.StagedAssetSet) error {
	encode := func(v []string) []byte {
		if v == nil {
			v = []string{}
		}
		b, _ := json.Marshal(v)
		return b
	}

	_, err := tx.Exec(ctx, `UPDATE staged_assets
SET logo = $2, gallery = $3, services = $4, products = $5, staff = $6, updated_at = now()
WHERE staging_key = $1`,
		set.StagingKey, set.Logo,
		encode(set.Gallery), encode(set.Services), encode(set.Products), encode(set.Staff),
	)
	if err != nil {
		return fmt.Errorf("update staged assets: %w", err)
	}
	return nil
}

func countGrouped(ctx context.Context, db *pgxpool.Pool, query string) (map[string]int, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count grouped: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[key] = n
	}
	return out, rows.Err()
}
