package domain

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

// Staged asset set states.
const (
	StagedPending  = "pending"
	StagedPromoted = "promoted"
	StagedRejected = "rejected"
)

// Staged asset categories. Logo holds a single URL, the rest are lists.
const (
	AssetLogo     = "logo"
	AssetGallery  = "gallery"
	AssetServices = "services"
	AssetProducts = "products"
	AssetStaff    = "staff"
)

// ValidAssetCategory reports whether c names a staging category.
func ValidAssetCategory(c string) bool {
	switch c {
	case AssetLogo, AssetGallery, AssetServices, AssetProducts, AssetStaff:
		return true
	}
	return false
}

// StagedAssetSet indexes media uploaded under a temporary namespace before a
// tenant identifier exists. It is consumed, not deleted, when the tenant is
// provisioned.
type StagedAssetSet struct {
	StagingKey string
	RequestID  string
	Logo       string
	Gallery    []string
	Services   []string
	Products   []string
	Staff      []string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Empty reports whether the set contains no asset references at all.
func (s StagedAssetSet) Empty() bool {
	return s.Logo == "" && len(s.Gallery) == 0 && len(s.Services) == 0 &&
		len(s.Products) == 0 && len(s.Staff) == 0
}

var stagingKeyPattern = regexp.MustCompile(`^staging_\d+_\d{1,4}$`)

// NewStagingKey returns a fresh temporary namespace key for uploads made
// before any tenant identifier exists.
func NewStagingKey() string {
	return fmt.Sprintf("staging_%d_%04d", time.Now().Unix(), rand.IntN(10000))
}

// ValidStagingKey reports whether key has the staging namespace format.
func ValidStagingKey(key string) bool {
	return stagingKeyPattern.MatchString(key)
}
