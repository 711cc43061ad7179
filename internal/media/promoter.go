package media

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/domain"
	"github.com/salonos/salonos-backoffice/internal/slug"
)

// PromotedAsset is the per-asset outcome of a promotion. Degraded assets
// keep their original URL after every relocation strategy failed.
type PromotedAsset struct {
	URL      string
	Promoted bool
	Degraded bool
}

// PromotedSet is the complete promotion result for one staged asset set.
// It always carries one entry per staged asset, promoted or not.
type PromotedSet struct {
	Logo     PromotedAsset
	Gallery  []PromotedAsset
	Services []PromotedAsset
	Products []PromotedAsset
	Staff    []PromotedAsset
}

// DegradedCount returns how many assets fell back to their original URL.
func (p PromotedSet) DegradedCount() int {
	n := 0
	for _, a := range p.all() {
		if a.Degraded {
			n++
		}
	}
	return n
}

func (p PromotedSet) all() []PromotedAsset {
	out := make([]PromotedAsset, 0, 1+len(p.Gallery)+len(p.Services)+len(p.Products)+len(p.Staff))
	if p.Logo.URL != "" {
		out = append(out, p.Logo)
	}
	out = append(out, p.Gallery...)
	out = append(out, p.Services...)
	out = append(out, p.Products...)
	out = append(out, p.Staff...)
	return out
}

// URLAt returns the URL of assets[i], or fallback when the index is out of
// range. Convenience for callers pairing promoted lists with drafts.
func URLAt(assets []PromotedAsset, i int, fallback string) string {
	if i >= 0 && i < len(assets) {
		return assets[i].URL
	}
	return fallback
}

// Promoter relocates staged media into a tenant's permanent namespace.
type Promoter struct {
	store  ObjectStore
	logger *zap.Logger
}

// NewPromoter creates a promoter over the given object store.
func NewPromoter(store ObjectStore, logger *zap.Logger) *Promoter {
	return &Promoter{store: store, logger: logger}
}

// Promote moves every asset in the staged set under the tenant identifier.
// Per-asset failures degrade to the original URL and never abort the
// promotion; the only hard error is an invalid tenant identifier.
func (p *Promoter) Promote(ctx context.Context, set domain.StagedAssetSet, tenantSlug string) (PromotedSet, error) {
	if !slug.Valid(tenantSlug) {
		return PromotedSet{}, fmt.Errorf("promote assets: invalid tenant identifier %q", tenantSlug)
	}

	var out PromotedSet
	if set.Logo != "" {
		out.Logo = p.promoteOne(ctx, set.Logo, tenantSlug+"/logos/logo")
	}
	out.Gallery = p.promoteList(ctx, set.Gallery, tenantSlug, "gallery", "image")
	out.Services = p.promoteList(ctx, set.Services, tenantSlug, "services", "service")
	out.Products = p.promoteList(ctx, set.Products, tenantSlug, "products", "product")
	out.Staff = p.promoteList(ctx, set.Staff, tenantSlug, "staff", "staff")

	if n := out.DegradedCount(); n > 0 {
		p.logger.Warn("asset promotion degraded",
			zap.String("tenant", tenantSlug),
			zap.String("staging_key", set.StagingKey),
			zap.Int("degraded", n),
		)
	}

	return out, nil
}

func (p *Promoter) promoteList(ctx context.Context, urls []string, tenantSlug, folder, name string) []PromotedAsset {
	out := make([]PromotedAsset, 0, len(urls))
	for i, u := range urls {
		dest := fmt.Sprintf("%s/%s/%s%d", tenantSlug, folder, name, i+1)
		out = append(out, p.promoteOne(ctx, u, dest))
	}
	return out
}

// promoteOne applies the three-step relocation policy: rename, then check
// whether the destination already holds the object (idempotent retry), then
// re-upload from the original URL. All three failing degrades to the
// original URL.
func (p *Promoter) promoteOne(ctx context.Context, srcURL, destID string) PromotedAsset {
	srcID := PublicIDFromURL(srcURL)
	if srcID != "" {
		url, err := p.store.Rename(ctx, srcID, destID)
		if err == nil {
			return PromotedAsset{URL: url, Promoted: true}
		}
		p.logger.Debug("asset rename failed, trying fallbacks",
			zap.String("source", srcID),
			zap.String("dest", destID),
			zap.Error(err),
		)
	}

	if url, ok, err := p.store.Exists(ctx, destID); err == nil && ok {
		return PromotedAsset{URL: url, Promoted: true}
	}

	if url, err := p.store.UploadByURL(ctx, srcURL, destID); err == nil {
		return PromotedAsset{URL: url, Promoted: true}
	} else {
		p.logger.Warn("asset kept at original location",
			zap.String("source_url", srcURL),
			zap.String("dest", destID),
			zap.Error(err),
		)
	}

	return PromotedAsset{URL: srcURL, Degraded: true}
}
