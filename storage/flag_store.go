package storage

import (
	"context"
	"io"
)

// StoredFlag identifies a flag image after it has been written to object
// storage.
type StoredFlag struct {
	Key  string
	URL  string
	ETag string
}

// FlagStore keeps team flag images in object storage. Keys are stable per
// team, so re-uploading a flag replaces the previous image.
type FlagStore interface {
	PutFlag(ctx context.Context, key string, contentType string, reader io.Reader) (*StoredFlag, error)

	RemoveFlag(ctx context.Context, key string) error

	// PublicURL returns the externally reachable URL for a stored key.
	PublicURL(key string) string
}
