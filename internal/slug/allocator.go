// Package slug allocates collision-free tenant identifiers from
// human-supplied business names.
package slug

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

const (
	minLength  = 3
	maxLength  = 30
	maxRetries = 100
)

// Namespace is the shared pool of tenant identifiers. Reserve must be a
// conditional create: it returns false without error when the slug is
// already taken, so two racing allocators cannot both win the same slug.
type Namespace interface {
	SlugTaken(ctx context.Context, slug string) (bool, error)
	ReserveSlug(ctx context.Context, slug string) (bool, error)
}

// InvalidBaseNameError reports a business name that normalizes to something
// unusable as an identifier.
type InvalidBaseNameError struct {
	BaseName string
}

func (e *InvalidBaseNameError) Error() string {
	return fmt.Sprintf("slug: base name %q normalizes below %d characters", e.BaseName, minLength)
}

// AllocationExhaustedError reports that every candidate up to the retry cap
// was taken.
type AllocationExhaustedError struct {
	Base string
}

func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("slug: no free identifier for base %q after %d attempts", e.Base, maxRetries)
}

// Allocator derives a unique tenant identifier from a business name by
// probing the shared namespace and retrying with integer suffixes.
type Allocator struct {
	ns     Namespace
	logger *zap.Logger
}

// NewAllocator creates an allocator over the given identifier namespace.
func NewAllocator(ns Namespace, logger *zap.Logger) *Allocator {
	return &Allocator{ns: ns, logger: logger}
}

// Allocate returns a reserved identifier derived from baseName. The returned
// slug is already held in the namespace; the caller must materialize the
// tenant under it promptly.
func (a *Allocator) Allocate(ctx context.Context, baseName string) (string, error) {
	base := Normalize(baseName)
	if len(base) < minLength {
		return "", &InvalidBaseNameError{BaseName: baseName}
	}

	for i := 0; i <= maxRetries; i++ {
		candidate := base
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}

		taken, err := a.ns.SlugTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if taken {
			continue
		}

		reserved, err := a.ns.ReserveSlug(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("reserve slug %q: %w", candidate, err)
		}
		if reserved {
			if i > 0 {
				a.logger.Debug("slug base occupied, suffixed",
					zap.String("base", base),
					zap.String("slug", candidate),
				)
			}
			return candidate, nil
		}
		// Lost a race for this candidate, keep probing.
	}

	return "", &AllocationExhaustedError{Base: base}
}

// Normalize lower-cases, strips diacritics, removes everything outside
// [a-z0-9] and truncates to the maximum identifier length.
func Normalize(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(name))

	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	slug := b.String()
	if len(slug) > maxLength {
		slug = slug[:maxLength]
	}
	return slug
}

// Valid reports whether s already satisfies the identifier format
// constraints (lowercase ASCII alphanumeric, bounded length).
func Valid(s string) bool {
	if len(s) < minLength || len(s) > maxLength {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
