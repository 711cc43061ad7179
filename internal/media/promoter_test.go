package media_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/domain"
	"github.com/salonos/salonos-backoffice/internal/media"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v123/staging_1_2/logo/logo.jpg": "staging_1_2/logo/logo",
		"https://res.cloudinary.com/demo/image/upload/staging_1_2/gallery/a.png":      "staging_1_2/gallery/a",
		"https://res.cloudinary.com/demo/image/upload/v9/bellaspa/logos/logo":         "bellaspa/logos/logo",
		"https://example.com/no-upload-segment.jpg":                                   "",
		"":                                                                            "",
	}
	for in, want := range cases {
		require.Equal(t, want, media.PublicIDFromURL(in), "input %q", in)
	}
}

func TestPromoteRenamesIntoTenantNamespace(t *testing.T) {
	store := newFakeStore()
	promoter := media.NewPromoter(store, zap.NewNop())

	set := domain.StagedAssetSet{
		StagingKey: "staging_1_0001",
		Logo:       "https://res.cloudinary.com/demo/image/upload/staging_1_0001/logo/logo.png",
		Gallery: []string{
			"https://res.cloudinary.com/demo/image/upload/staging_1_0001/gallery/a.png",
			"https://res.cloudinary.com/demo/image/upload/staging_1_0001/gallery/b.png",
		},
	}

	out, err := promoter.Promote(context.Background(), set, "bellaspa")
	require.NoError(t, err)
	require.True(t, out.Logo.Promoted)
	require.Len(t, out.Gallery, 2)
	require.Equal(t, 0, out.DegradedCount())

	require.Contains(t, out.Logo.URL, "bellaspa/logos/logo")
	require.Contains(t, out.Gallery[0].URL, "bellaspa/gallery/image1")
	require.Contains(t, out.Gallery[1].URL, "bellaspa/gallery/image2")
	require.Equal(t, []string{
		"staging_1_0001/logo/logo->bellaspa/logos/logo",
		"staging_1_0001/gallery/a->bellaspa/gallery/image1",
		"staging_1_0001/gallery/b->bellaspa/gallery/image2",
	}, store.renames)
}

func TestPromoteFallsBackToUpload(t *testing.T) {
	store := newFakeStore()
	store.renameErr = errors.New("rename refused")
	promoter := media.NewPromoter(store, zap.NewNop())

	set := domain.StagedAssetSet{
		StagingKey: "staging_1_0002",
		Logo:       "https://res.cloudinary.com/demo/image/upload/staging_1_0002/logo/logo.png",
	}

	out, err := promoter.Promote(context.Background(), set, "bellaspa")
	require.NoError(t, err)
	require.True(t, out.Logo.Promoted)
	require.False(t, out.Logo.Degraded)
	require.Equal(t, 1, store.uploads)
}

func TestPromoteUsesExistingDestination(t *testing.T) {
	// A retried promotion finds the object already moved by the previous
	// attempt.
	store := newFakeStore()
	store.renameErr = errors.New("source gone")
	store.existing = map[string]string{
		"bellaspa/logos/logo": "https://res.cloudinary.com/demo/image/upload/bellaspa/logos/logo.png",
	}
	promoter := media.NewPromoter(store, zap.NewNop())

	set := domain.StagedAssetSet{
		StagingKey: "staging_1_0003",
		Logo:       "https://res.cloudinary.com/demo/image/upload/staging_1_0003/logo/logo.png",
	}

	out, err := promoter.Promote(context.Background(), set, "bellaspa")
	require.NoError(t, err)
	require.True(t, out.Logo.Promoted)
	require.Equal(t, 0, store.uploads)
	require.Contains(t, out.Logo.URL, "bellaspa/logos/logo")
}

func TestPromoteDegradesToOriginalURL(t *testing.T) {
	store := newFakeStore()
	store.renameErr = errors.New("rename refused")
	store.uploadErr = errors.New("upload refused")
	promoter := media.NewPromoter(store, zap.NewNop())

	original := "https://res.cloudinary.com/demo/image/upload/staging_1_0004/gallery/a.png"
	set := domain.StagedAssetSet{
		StagingKey: "staging_1_0004",
		Logo:       original,
		Gallery:    []string{original, original},
	}

	out, err := promoter.Promote(context.Background(), set, "bellaspa")
	require.NoError(t, err)
	require.Len(t, out.Gallery, 2)
	require.Equal(t, 3, out.DegradedCount())
	require.Equal(t, original, out.Logo.URL)
	require.True(t, out.Logo.Degraded)
}

func TestPromoteRejectsInvalidIdentifier(t *testing.T) {
	promoter := media.NewPromoter(newFakeStore(), zap.NewNop())

	_, err := promoter.Promote(context.Background(), domain.StagedAssetSet{Logo: "https://x/upload/a.png"}, "Bella Spa")
	require.Error(t, err)
}

type fakeStore struct {
	renames   []string
	uploads   int
	existing  map[string]string
	renameErr error
	uploadErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: make(map[string]string)}
}

func (s *fakeStore) Rename(_ context.Context, fromID, toID string) (string, error) {
	if s.renameErr != nil {
		return "", s.renameErr
	}
	s.renames = append(s.renames, fromID+"->"+toID)
	return "https://res.cloudinary.com/demo/image/upload/" + toID + ".png", nil
}

func (s *fakeStore) Exists(_ context.Context, publicID string) (string, bool, error) {
	url, ok := s.existing[publicID]
	return url, ok, nil
}

func (s *fakeStore) UploadByURL(_ context.Context, remoteURL, publicID string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads++
	return "https://res.cloudinary.com/demo/image/upload/" + publicID + ".png", nil
}

func (s *fakeStore) DeleteByPrefix(context.Context, string) error { return nil }
