package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxBatchSize bounds how many objects one backend
	// batch-delete call may carry.
	DefaultMaxBatchSize = 250

	// DefaultURLExpiry is the lifetime of signed download URLs.
	DefaultURLExpiry = 15 * time.Minute
)

// Options configures a Storage.
type Options struct {
	// BasePath is prefixed to every logical key, scoping a deployment
	// within a shared container. Empty means no prefixing. Immutable
	// after construction.
	BasePath string

	// MaxBatchSize caps the size of one batch-delete call. Zero means
	// DefaultMaxBatchSize; negative is a configuration error.
	MaxBatchSize int

	// URLExpiry is the lifetime of signed download URLs. Zero means
	// DefaultURLExpiry.
	URLExpiry time.Duration

	// Open creates the backend connection. Called at most once, by the
	// first operation that needs it.
	Open func(ctx context.Context) (Backend, error)

	Cache     URLCache
	Telemetry Telemetry
}

// Storage maps content-management asset operations onto an injected
// storage backend. All methods are safe for concurrent use.
type Storage struct {
	basePath     string
	maxBatchSize int
	urlExpiry    time.Duration
	open         func(ctx context.Context) (Backend, error)
	cache        URLCache
	telemetry    Telemetry

	// The backend handle is created lazily, at most once. Late callers
	// during initialization wait on the first caller's attempt; a
	// failed attempt is memoized, not retried. The mutex guards the
	// handle fields so Close can read them outside the once.
	once    sync.Once
	mu      sync.Mutex
	backend Backend
	initErr error
}

// NewStorage creates a new storage service over the given options.
func NewStorage(opts Options) (*Storage, error) {
	if opts.Open == nil {
		return nil, &ConfigError{Setting: "backend", Reason: "no backend configured"}
	}
	if opts.MaxBatchSize < 0 {
		return nil, &ConfigError{Setting: "max_batch_size", Reason: "must be positive"}
	}
	if opts.MaxBatchSize == 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = DefaultURLExpiry
	}
	if opts.Cache == nil {
		opts.Cache = NoOpCache{}
	}
	if opts.Telemetry == nil {
		opts.Telemetry = NoOpTelemetry{}
	}

	return &Storage{
		basePath:     normalizeKey(opts.BasePath),
		maxBatchSize: opts.MaxBatchSize,
		urlExpiry:    opts.URLExpiry,
		open:         opts.Open,
		cache:        opts.Cache,
		telemetry:    opts.Telemetry,
	}, nil
}

func (s *Storage) getBackend(ctx context.Context) (Backend, error) {
	s.once.Do(func() {
		backend, err := s.open(ctx)
		if err != nil {
			err = fmt.Errorf("initializing blob backend: %w", err)
		}
		s.mu.Lock()
		s.backend, s.initErr = backend, err
		s.mu.Unlock()
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend, s.initErr
}

// UploadBlob stores content under the resolved key, replacing any
// existing object.
func (s *Storage) UploadBlob(ctx context.Context, key string, content io.Reader, contentType string) error {
	backend, err := s.getBackend(ctx)
	if err != nil {
		return err
	}

	resolved := ResolveKey(s.basePath, key)
	if err := backend.Upload(ctx, resolved, content, contentType); err != nil {
		return transportErr("uploading blob", resolved, err)
	}

	s.telemetry.Emit("blob.uploaded", map[string]string{
		"key":          resolved,
		"content_type": contentType,
	})
	return nil
}

// DownloadBlob returns the full content of the object at key. Returns
// ErrNotFound if the object does not exist.
func (s *Storage) DownloadBlob(ctx context.Context, key string) ([]byte, error) {
	backend, err := s.getBackend(ctx)
	if err != nil {
		return nil, err
	}

	resolved := ResolveKey(s.basePath, key)
	rc, err := backend.Download(ctx, resolved)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, transportErr("downloading blob", resolved, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, transportErr("reading blob", resolved, err)
	}

	s.telemetry.Emit("blob.downloaded", map[string]string{
		"key":   resolved,
		"bytes": strconv.Itoa(len(data)),
	})
	return data, nil
}

// ListBlobs returns the logical keys of all objects under prefix,
// relative to the configured base path.
func (s *Storage) ListBlobs(ctx context.Context, prefix string) ([]string, error) {
	backend, err := s.getBackend(ctx)
	if err != nil {
		return nil, err
	}

	resolved := ResolveKey(s.basePath, prefix)
	// An empty prefix must not widen the scope to sibling keys that
	// merely share the base path as a string prefix (base vs basement).
	if s.basePath != "" && resolved == s.basePath {
		resolved += "/"
	}
	keys, err := backend.List(ctx, resolved)
	if err != nil {
		return nil, transportErr("listing blobs", resolved, err)
	}

	if s.basePath != "" {
		scope := s.basePath + "/"
		trimmed := make([]string, 0, len(keys))
		for _, k := range keys {
			if !strings.HasPrefix(k, scope) {
				continue
			}
			trimmed = append(trimmed, strings.TrimPrefix(k, scope))
		}
		keys = trimmed
	}
	return keys, nil
}

// GetDownloadURL returns a time-limited download URL for key, or the
// empty string if the object does not exist. Missing objects are not
// an error.
func (s *Storage) GetDownloadURL(ctx context.Context, key string) (string, error) {
	backend, err := s.getBackend(ctx)
	if err != nil {
		return "", err
	}

	resolved := ResolveKey(s.basePath, key)
	if url, err := s.cache.GetURL(ctx, resolved); err == nil {
		return url, nil
	}

	url, err := backend.SignedURL(ctx, resolved, s.urlExpiry)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", transportErr("signing blob url", resolved, err)
	}

	// Cache for half the signature lifetime so a cached URL always has
	// useful life left. Cache failures only cost a signing round trip.
	_ = s.cache.SetURL(ctx, resolved, url, s.urlExpiry/2)

	s.telemetry.Emit("blob.url_issued", map[string]string{"key": resolved})
	return url, nil
}

// DeleteBlob removes the object at key. Deleting a missing object is a
// no-op.
func (s *Storage) DeleteBlob(ctx context.Context, key string) error {
	backend, err := s.getBackend(ctx)
	if err != nil {
		return err
	}

	resolved := ResolveKey(s.basePath, key)
	if err := backend.Delete(ctx, resolved); err != nil && !errors.Is(err, ErrNotFound) {
		return transportErr("deleting blob", resolved, err)
	}
	_ = s.cache.DeleteURL(ctx, resolved)

	s.telemetry.Emit("blob.deleted", map[string]string{"key": resolved})
	return nil
}

// DeleteBlobFolder removes every object under prefix, submitting the
// deletes in bounded batches. Per-item failures are counted in the
// outcome; a transport failure aborts remaining batches and propagates.
func (s *Storage) DeleteBlobFolder(ctx context.Context, prefix string) (BatchOutcome, error) {
	backend, err := s.getBackend(ctx)
	if err != nil {
		return BatchOutcome{}, err
	}

	resolved := ResolveKey(s.basePath, prefix)
	listPrefix := resolved
	if listPrefix != "" {
		listPrefix += "/"
	}
	keys, err := backend.List(ctx, listPrefix)
	if err != nil {
		return BatchOutcome{}, transportErr("listing blob folder", resolved, err)
	}

	outcome, err := deleteInBatches(ctx, backend, keys, s.maxBatchSize)
	if err != nil {
		return outcome, transportErr("deleting blob folder", resolved, err)
	}
	for _, k := range keys {
		_ = s.cache.DeleteURL(ctx, k)
	}

	s.telemetry.Emit("blob.folder_deleted", map[string]string{
		"prefix":    resolved,
		"requested": strconv.Itoa(outcome.TotalRequested),
		"failed":    strconv.Itoa(outcome.TotalFailed),
	})
	return outcome, nil
}

// CreateContainer creates the backing container. Creating an existing
// container is not an error.
func (s *Storage) CreateContainer(ctx context.Context) error {
	backend, err := s.getBackend(ctx)
	if err != nil {
		return err
	}
	if err := backend.CreateContainer(ctx); err != nil {
		return fmt.Errorf("creating container: %w", err)
	}
	return nil
}

// DeleteContainer removes the backing container and everything in it.
func (s *Storage) DeleteContainer(ctx context.Context) error {
	backend, err := s.getBackend(ctx)
	if err != nil {
		return err
	}
	if err := backend.DeleteContainer(ctx); err != nil {
		return fmt.Errorf("deleting container: %w", err)
	}
	return nil
}

// Close releases the backend connection if one was created.
func (s *Storage) Close() error {
	s.mu.Lock()
	backend := s.backend
	s.mu.Unlock()

	if backend == nil {
		return nil
	}
	if closer, ok := backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
