// Package media relocates tenant assets between staging and permanent
// namespaces in the external object store.
package media

import (
	"context"
	"regexp"
)

// ObjectStore is the subset of the media host's API the provisioning
// pipeline depends on. Keys are slash-separated public IDs without file
// extensions.
type ObjectStore interface {
	// Rename moves an object to a new key and returns its new URL.
	Rename(ctx context.Context, fromID, toID string) (string, error)
	// Exists checks a key and returns the object's URL when present.
	Exists(ctx context.Context, publicID string) (string, bool, error)
	// UploadByURL fetches a remote URL and stores it under publicID,
	// returning the stored object's URL.
	UploadByURL(ctx context.Context, remoteURL, publicID string) (string, error)
	// DeleteByPrefix removes every object under the given key prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Matches the path after /upload/, with an optional version segment and an
// optional file extension, e.g.
// https://res.cloudinary.com/demo/image/upload/v123/staging_1_2/logo/logo.jpg
// -> staging_1_2/logo/logo
var publicIDPattern = regexp.MustCompile(`/upload/(?:v\d+/)?(.+?)(?:\.\w+)?$`)

// PublicIDFromURL extracts the object key from a delivery URL. Returns ""
// when the URL does not look like a store delivery URL.
func PublicIDFromURL(url string) string {
	m := publicIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
