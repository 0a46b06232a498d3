package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("blob:\n  driver: fs\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.Server.HTTPPort != 8080 {
		t.Errorf("expected default port 8080, got %d", config.Server.HTTPPort)
	}
	if config.Blob.Driver != "fs" {
		t.Errorf("expected driver fs, got %q", config.Blob.Driver)
	}
	if config.Blob.MaxBatchSize != 250 {
		t.Errorf("expected default batch size 250, got %d", config.Blob.MaxBatchSize)
	}
	if config.Blob.URLExpirySeconds != 900 {
		t.Errorf("expected default URL expiry 900s, got %d", config.Blob.URLExpirySeconds)
	}
	if config.AWS.Region != "us-west-2" {
		t.Errorf("expected default region, got %q", config.AWS.Region)
	}
}

func TestLoadConfigFull(t *testing.T) {
	yaml := `
server:
  http_port: 9090
blob:
  driver: s3
  base_path: tenant-a/assets
  max_batch_size: 100
  url_expiry_seconds: 300
aws:
  region: eu-west-1
  s3:
    bucket_name: my-assets
  elasticache:
    address: cache.internal:6379
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.Server.HTTPPort != 9090 {
		t.Errorf("expected port 9090, got %d", config.Server.HTTPPort)
	}
	if config.Blob.BasePath != "tenant-a/assets" {
		t.Errorf("unexpected base path %q", config.Blob.BasePath)
	}
	if config.Blob.MaxBatchSize != 100 {
		t.Errorf("expected batch size 100, got %d", config.Blob.MaxBatchSize)
	}
	if config.AWS.S3.BucketName != "my-assets" {
		t.Errorf("unexpected bucket %q", config.AWS.S3.BucketName)
	}
	if config.AWS.ElastiCache.Address != "cache.internal:6379" {
		t.Errorf("unexpected cache address %q", config.AWS.ElastiCache.Address)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
