package storage

import (
	"context"
	"io"
	"strings"
)

// Storage defines read access to the place recipient spreadsheets live.
// Implementations can use local filesystem, S3, or any other storage backend.
type Storage interface {
	// Get retrieves a file by its key.
	// Returns an io.ReadCloser that must be closed by the caller.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

const s3Scheme = "s3://"

// Resolver opens spreadsheet locations. "s3://bucket/key" locations go to the
// object store; anything else is treated as a local path.
type Resolver struct {
	local  Storage
	remote func(bucket string) Storage
}

// NewResolver creates a Resolver. remote may be nil when no object store is
// configured; s3 locations then fail with ErrRemoteNotConfigured.
func NewResolver(local Storage, remote func(bucket string) Storage) *Resolver {
	if local == nil {
		local = NewLocalStorage("")
	}
	return &Resolver{local: local, remote: remote}
}

// Open returns a reader for location.
func (r *Resolver) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, ok := ParseS3Location(location)
	if !ok {
		return r.local.Get(ctx, location)
	}
	if r.remote == nil {
		return nil, ErrRemoteNotConfigured
	}
	return r.remote(bucket).Get(ctx, key)
}

// ParseS3Location splits "s3://bucket/path/to/key" into bucket and key.
// ok is false for anything that is not a complete s3 location.
func ParseS3Location(location string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(location, s3Scheme) {
		return "", "", false
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
