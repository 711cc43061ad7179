package slug_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/slug"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Bella Spa":                 "bellaspa",
		"Peluquería José":           "peluqueriajose",
		"  Salon & Café 24  ":       "saloncafe24",
		"ÀÉÎÕÜ":                     "aeiou",
		"!!!":                       "",
		"UPPER lower 123":           "upperlower123",
		"abcdefghijklmnopqrstuvwxyz0123456789": "abcdefghijklmnopqrstuvwxyz0123",
	}
	for in, want := range cases {
		require.Equal(t, want, slug.Normalize(in), "input %q", in)
	}
}

func TestAllocateFreshName(t *testing.T) {
	ns := newMemoryNamespace()
	allocator := slug.NewAllocator(ns, zap.NewNop())

	got, err := allocator.Allocate(context.Background(), "Bella Spa")
	require.NoError(t, err)
	require.Equal(t, "bellaspa", got)
	require.True(t, ns.reserved["bellaspa"])
}

func TestAllocateSmallestFreeSuffix(t *testing.T) {
	ns := newMemoryNamespace("bellaspa", "bellaspa1", "bellaspa2")
	allocator := slug.NewAllocator(ns, zap.NewNop())

	got, err := allocator.Allocate(context.Background(), "Bella Spa")
	require.NoError(t, err)
	require.Equal(t, "bellaspa3", got)
}

func TestAllocateNeverReturnsOccupiedBase(t *testing.T) {
	ns := newMemoryNamespace("bellaspa")
	allocator := slug.NewAllocator(ns, zap.NewNop())

	for range 3 {
		got, err := allocator.Allocate(context.Background(), "Bella Spa")
		require.NoError(t, err)
		require.NotEqual(t, "bellaspa", got)
	}
}

func TestAllocateInvalidBaseName(t *testing.T) {
	allocator := slug.NewAllocator(newMemoryNamespace(), zap.NewNop())

	_, err := allocator.Allocate(context.Background(), "!!")
	var invalidErr *slug.InvalidBaseNameError
	require.ErrorAs(t, err, &invalidErr)
	require.Equal(t, "!!", invalidErr.BaseName)
}

func TestAllocateExhausted(t *testing.T) {
	taken := []string{"spa"}
	for i := 1; i <= 100; i++ {
		taken = append(taken, "spa"+strconv.Itoa(i))
	}
	allocator := slug.NewAllocator(newMemoryNamespace(taken...), zap.NewNop())

	_, err := allocator.Allocate(context.Background(), "Spa")
	var exhausted *slug.AllocationExhaustedError
	require.ErrorAs(t, err, &exhausted)
}

func TestAllocateRetriesAfterLostReservation(t *testing.T) {
	// The probe says the base is free, but the reservation is lost to a
	// concurrent caller; the allocator must move on to the next candidate.
	ns := newMemoryNamespace()
	ns.stolen = map[string]bool{"bellaspa": true}
	allocator := slug.NewAllocator(ns, zap.NewNop())

	got, err := allocator.Allocate(context.Background(), "Bella Spa")
	require.NoError(t, err)
	require.Equal(t, "bellaspa1", got)
}

func TestValid(t *testing.T) {
	require.True(t, slug.Valid("bellaspa"))
	require.True(t, slug.Valid("spa42"))
	require.False(t, slug.Valid("ab"))
	require.False(t, slug.Valid("Bella"))
	require.False(t, slug.Valid("bella-spa"))
	require.False(t, slug.Valid(""))
}

type memoryNamespace struct {
	reserved map[string]bool
	// stolen simulates candidates lost to a concurrent reservation between
	// the probe and the conditional create.
	stolen map[string]bool
}

func newMemoryNamespace(taken ...string) *memoryNamespace {
	ns := &memoryNamespace{reserved: make(map[string]bool)}
	for _, s := range taken {
		ns.reserved[s] = true
	}
	return ns
}

func (ns *memoryNamespace) SlugTaken(_ context.Context, s string) (bool, error) {
	return ns.reserved[s], nil
}

func (ns *memoryNamespace) ReserveSlug(_ context.Context, s string) (bool, error) {
	if ns.stolen[s] {
		ns.reserved[s] = true
		return false, nil
	}
	if ns.reserved[s] {
		return false, nil
	}
	ns.reserved[s] = true
	return true, nil
}
