// Package provisioning runs the end-to-end pipeline that turns an approved
// intake request into a live tenant with a login account.
package provisioning

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/credentials"
	"github.com/salonos/salonos-backoffice/internal/domain"
	"github.com/salonos/salonos-backoffice/internal/media"
	"github.com/salonos/salonos-backoffice/internal/notifier"
	"github.com/salonos/salonos-backoffice/internal/repository"
	"github.com/salonos/salonos-backoffice/internal/slug"
)

var tracer = otel.Tracer("salonos-backoffice/provisioning")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// Result is the outcome of a provisioning run. TemporarySecret is only set
// on the run that actually created the account; replays return the existing
// linkage with AlreadyProvisioned set.
type Result struct {
	RequestID          string   `json:"requestId"`
	TenantSlug         string   `json:"tenantSlug"`
	AccountID          string   `json:"accountId"`
	AccountHandle      string   `json:"accountHandle"`
	TemporarySecret    string   `json:"temporarySecret,omitempty"`
	Services           int      `json:"services"`
	Products           int      `json:"products"`
	StaffCount         int      `json:"staffCount"`
	DegradedAssets     int      `json:"degradedAssets"`
	PartialWrites      []string `json:"partialWrites,omitempty"`
	AlreadyProvisioned bool     `json:"alreadyProvisioned"`
}

// Orchestrator sequences identifier allocation, asset promotion, credential
// issuance and tenant materialization for one intake request.
type Orchestrator struct {
	intake   repository.IntakeRepository
	accounts repository.AccountRepository
	tenants  repository.TenantRepository
	staged   repository.StagedAssetRepository

	allocator    *slug.Allocator
	issuer       *credentials.Issuer
	hasher       credentials.Hasher
	promoter     *media.Promoter
	materializer *Materializer
	notifier     notifier.Notifier
	logger       *zap.Logger
}

// NewOrchestrator wires the pipeline components.
func NewOrchestrator(
	intake repository.IntakeRepository,
	accounts repository.AccountRepository,
	tenants repository.TenantRepository,
	staged repository.StagedAssetRepository,
	allocator *slug.Allocator,
	issuer *credentials.Issuer,
	hasher credentials.Hasher,
	promoter *media.Promoter,
	materializer *Materializer,
	n notifier.Notifier,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		intake:       intake,
		accounts:     accounts,
		tenants:      tenants,
		staged:       staged,
		allocator:    allocator,
		issuer:       issuer,
		hasher:       hasher,
		promoter:     promoter,
		materializer: materializer,
		notifier:     n,
		logger:       logger,
	}
}

// Provision runs the full pipeline for the given intake request. Replays
// against an already-provisioned request return the existing linkage and
// create nothing. A step failure leaves the request status unchanged so the
// run can be retried after the cause is fixed.
func (o *Orchestrator) Provision(ctx context.Context, requestID string) (Result, error) {
	ctx, span := startSpan(ctx, "provisioning.Provision")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", requestID))

	req, err := o.intake.GetByID(ctx, requestID)
	if err != nil {
		span.RecordError(err)
		return Result{}, failStep("load request", err)
	}

	if req.Provisioned() {
		o.logger.Info("request already provisioned, replaying linkage",
			zap.String("request_id", req.ID),
			zap.String("tenant", req.TenantSlug),
		)
		return o.replay(ctx, req), nil
	}

	if err := validate(req); err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	baseName := req.Profile.BrandName
	if baseName == "" {
		baseName = req.SalonName
	}
	tenantSlug, err := o.allocator.Allocate(ctx, baseName)
	if err != nil {
		span.RecordError(err)
		return Result{}, failStep("allocate identifier", err)
	}
	span.SetAttributes(attribute.String("tenant.slug", tenantSlug))

	promoted, err := o.promoteStaged(ctx, req, tenantSlug)
	if err != nil {
		span.RecordError(err)
		return Result{}, failStep("promote assets", err)
	}

	secret, err := credentials.GenerateSecret()
	if err != nil {
		span.RecordError(err)
		return Result{}, failStep("generate secret", err)
	}
	hash, err := o.hasher.Hash(secret)
	if err != nil {
		span.RecordError(err)
		return Result{}, failStep("hash secret", err)
	}

	handle, err := o.deriveHandle(ctx, req)
	if err != nil {
		span.RecordError(err)
		return Result{}, failStep("derive handle", err)
	}

	mat, err := o.materializer.Materialize(ctx, MaterializeInput{
		Slug:            tenantSlug,
		SalonName:       req.SalonName,
		OwnerName:       req.OwnerName,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		Profile:         req.Profile,
		Assets:          promoted,
		AdminSecretHash: hash,
	})
	if err != nil {
		span.RecordError(err)
		return Result{}, failStep("materialize tenant", err)
	}

	account, err := o.accounts.Create(ctx, domain.Account{
		Handle:     handle,
		SecretHash: hash,
		FullName:   req.OwnerName,
		Email:      req.Email,
		Phone:      req.Phone,
		SalonName:  req.SalonName,
		Plan:       req.Plan,
		Status:     domain.AccountActive,
		TenantSlug: tenantSlug,
		RequestID:  req.ID,
	})
	if err != nil {
		span.RecordError(err)
		return Result{}, failStep("create account", err)
	}

	if err := o.intake.LinkProvisioned(ctx, req.ID, tenantSlug, account.ID); err != nil {
		span.RecordError(err)
		return Result{}, failStep("link request", err)
	}

	if err := o.tenants.MarkProvisioned(ctx, tenantSlug); err != nil {
		span.RecordError(err)
		return Result{}, failStep("mark provisioned", err)
	}

	if req.StagingKey != "" {
		if err := o.staged.MarkPromoted(ctx, req.StagingKey); err != nil && !errors.Is(err, repository.ErrNotFound) {
			o.logger.Warn("failed to mark staged set promoted",
				zap.String("staging_key", req.StagingKey),
				zap.Error(err),
			)
		}
	}

	o.notify(ctx, req, tenantSlug, handle, secret)

	o.logger.Info("tenant provisioned",
		zap.String("request_id", req.ID),
		zap.String("tenant", tenantSlug),
		zap.String("account_id", account.ID),
		zap.String("handle", handle),
		zap.Int("staff", mat.Staff),
		zap.Int("degraded_assets", promoted.DegradedCount()),
	)

	return Result{
		RequestID:       req.ID,
		TenantSlug:      tenantSlug,
		AccountID:       account.ID,
		AccountHandle:   handle,
		TemporarySecret: secret,
		Services:        mat.Services,
		Products:        mat.Products,
		StaffCount:      mat.Staff,
		DegradedAssets:  promoted.DegradedCount(),
		PartialWrites:   mat.Failed,
	}, nil
}

// replay reconstructs the result of a prior successful run without writing
// anything. The temporary secret is not recoverable and stays empty.
func (o *Orchestrator) replay(ctx context.Context, req domain.IntakeRequest) Result {
	res := Result{
		RequestID:          req.ID,
		TenantSlug:         req.TenantSlug,
		AccountID:          req.AccountID,
		AlreadyProvisioned: true,
	}
	if req.AccountID != "" {
		if account, err := o.accounts.GetByID(ctx, req.AccountID); err == nil {
			res.AccountHandle = account.Handle
		}
	}
	return res
}

func validate(req domain.IntakeRequest) error {
	if strings.TrimSpace(req.SalonName) == "" && strings.TrimSpace(req.Profile.BrandName) == "" {
		return &ValidationError{Field: "salonName", Reason: "empty"}
	}
	if strings.TrimSpace(req.Email) == "" {
		return &ValidationError{Field: "email", Reason: "empty"}
	}
	return nil
}

// promoteStaged promotes the request's staged asset set when one exists. A
// missing set is not an error; the request simply has no uploaded media.
func (o *Orchestrator) promoteStaged(ctx context.Context, req domain.IntakeRequest, tenantSlug string) (media.PromotedSet, error) {
	if req.StagingKey == "" {
		return media.PromotedSet{}, nil
	}

	set, err := o.staged.Get(ctx, req.StagingKey)
	if errors.Is(err, repository.ErrNotFound) {
		return media.PromotedSet{}, nil
	}
	if err != nil {
		return media.PromotedSet{}, err
	}
	if set.Empty() {
		return media.PromotedSet{}, nil
	}

	return o.promoter.Promote(ctx, set, tenantSlug)
}

// deriveHandle turns the owner's name into a unique login handle, falling
// back to the email local part when the name yields nothing usable.
func (o *Orchestrator) deriveHandle(ctx context.Context, req domain.IntakeRequest) (string, error) {
	base := credentials.DeriveHandle(req.OwnerName)
	if base == "" {
		local, _, _ := strings.Cut(req.Email, "@")
		base = credentials.DeriveHandle(local)
	}
	return o.issuer.UniqueHandle(ctx, base)
}

// notify sends the welcome email. Delivery failures are logged and swallowed;
// credentials are already persisted and an admin can resend them.
func (o *Orchestrator) notify(ctx context.Context, req domain.IntakeRequest, tenantSlug, handle, secret string) {
	if o.notifier == nil {
		return
	}
	err := o.notifier.SendCredentials(ctx, notifier.CredentialsMessage{
		To:              req.Email,
		OwnerName:       req.OwnerName,
		SalonName:       req.SalonName,
		TenantSlug:      tenantSlug,
		Handle:          handle,
		TemporarySecret: secret,
		Plan:            req.Plan,
	})
	if err != nil {
		o.logger.Warn("credentials email failed",
			zap.String("request_id", req.ID),
			zap.String("tenant", tenantSlug),
			zap.Error(err),
		)
	}
}
