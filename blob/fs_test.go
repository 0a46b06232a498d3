package blob

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestFSBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFSBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBackend: %v", err)
	}

	if err := backend.Upload(ctx, "docs/guide/intro.md", strings.NewReader("# hello"), "text/markdown"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	rc, err := backend.Download(ctx, "docs/guide/intro.md")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "# hello" {
		t.Fatalf("expected # hello, got %q", string(data))
	}

	keys, err := backend.List(ctx, "docs/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 1 || keys[0] != "docs/guide/intro.md" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestFSBackendDownloadMissing(t *testing.T) {
	backend, err := NewFSBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBackend: %v", err)
	}

	if _, err := backend.Download(context.Background(), "missing.bin"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFSBackendDeleteMissingIsNoOp(t *testing.T) {
	backend, err := NewFSBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBackend: %v", err)
	}

	if err := backend.Delete(context.Background(), "missing.bin"); err != nil {
		t.Fatalf("delete missing should be noop: %v", err)
	}
}

func TestFSBackendSignedURL(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFSBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBackend: %v", err)
	}

	if _, err := backend.SignedURL(ctx, "missing.bin", 0); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound for missing object, got %v", err)
	}

	if err := backend.Upload(ctx, "a.txt", strings.NewReader("a"), ""); err != nil {
		t.Fatalf("upload: %v", err)
	}
	url, err := backend.SignedURL(ctx, "a.txt", 0)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.HasPrefix(url, "file://") || !strings.HasSuffix(url, "/a.txt") {
		t.Fatalf("unexpected URL: %q", url)
	}
}

func TestFSBackendDeleteBatch(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFSBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBackend: %v", err)
	}

	for _, k := range []string{"b/1", "b/2"} {
		if err := backend.Upload(ctx, k, strings.NewReader("x"), ""); err != nil {
			t.Fatalf("upload %s: %v", k, err)
		}
	}

	// One existing, one already gone: only real failures count
	failed, err := backend.DeleteBatch(ctx, []string{"b/1", "b/2", "b/never"})
	if err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if failed != 0 {
		t.Fatalf("expected 0 failures, got %d", failed)
	}

	keys, err := backend.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty store, got %v", keys)
	}
}

func TestFSBackendRejectsEscapingKeys(t *testing.T) {
	backend, err := NewFSBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBackend: %v", err)
	}

	if err := backend.Upload(context.Background(), "../outside.txt", strings.NewReader("x"), ""); err == nil {
		t.Fatal("expected error for key escaping the storage root")
	}
}
