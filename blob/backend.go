package blob

import (
	"context"
	"io"
	"time"
)

// Backend defines the capability interface for blob storage operations.
// Keys passed to a Backend are already canonical (see ResolveKey);
// implementations must not re-interpret them.
type Backend interface {
	// Upload stores the content under key, replacing any existing object.
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error

	// Download opens the object for reading. Returns ErrNotFound if the
	// object does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns the keys of all objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes a single object. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, key string) error

	// DeleteBatch removes the given objects in one backend call and
	// returns the number of per-item failures. A non-nil error means
	// the whole call failed in transport and no per-item result exists.
	DeleteBatch(ctx context.Context, keys []string) (failed int, err error)

	// SignedURL returns a time-limited download URL for key. Returns
	// ErrNotFound if the object does not exist.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// CreateContainer creates the backing container. Creating an
	// existing container is not an error.
	CreateContainer(ctx context.Context) error

	// DeleteContainer removes the backing container and everything in it.
	DeleteContainer(ctx context.Context) error
}
