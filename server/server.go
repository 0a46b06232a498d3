package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/contentforge/blob-adapter/blob"
)

// Server exposes the blob storage service over HTTP
type Server struct {
	config  *Config
	storage *blob.Storage
}

// NewServer creates a new asset gateway server
func NewServer(config *Config) (*Server, error) {
	// Select the backend capability implementation for this deployment
	var open func(ctx context.Context) (blob.Backend, error)
	switch config.Blob.Driver {
	case "s3":
		region := config.AWS.Region
		bucket := config.AWS.S3.BucketName
		open = func(ctx context.Context) (blob.Backend, error) {
			return blob.NewS3Backend(region, bucket)
		}
	case "fs":
		root := config.Blob.FSRoot
		open = func(ctx context.Context) (blob.Backend, error) {
			return blob.NewFSBackend(root)
		}
	default:
		return nil, &blob.ConfigError{Setting: "driver", Reason: "unknown blob driver: " + config.Blob.Driver}
	}

	// Create Redis URL cache or use NoOpCache if Redis is not available
	var cache blob.URLCache = blob.NoOpCache{}
	if config.AWS.ElastiCache.Address != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		redisCache, err := blob.NewRedisCache(ctx, config.AWS.ElastiCache.Address)
		if err != nil {
			log.Printf("Warning: Failed to create Redis cache: %v. Continuing with NoOpCache.", err)
		} else {
			cache = redisCache
			log.Printf("Successfully connected to Redis cache at %s", config.AWS.ElastiCache.Address)
		}
	} else {
		log.Printf("No Redis address configured. Using NoOpCache.")
	}

	storage, err := blob.NewStorage(blob.Options{
		BasePath:     config.Blob.BasePath,
		MaxBatchSize: config.Blob.MaxBatchSize,
		URLExpiry:    time.Duration(config.Blob.URLExpirySeconds) * time.Second,
		Open:         open,
		Cache:        cache,
		Telemetry:    blob.NewLogTelemetry(nil),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blob storage: %v", err)
	}

	return &Server{
		config:  config,
		storage: storage,
	}, nil
}

// Handler returns the HTTP handler for the gateway
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/blobs", s.handleList)
	mux.HandleFunc("/api/blobs/", s.handleBlob)
	mux.HandleFunc("/api/urls/", s.handleURL)
	mux.HandleFunc("/api/folders/", s.handleFolder)
	mux.HandleFunc("/api/container", s.handleContainer)

	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Server.HTTPPort)
	log.Printf("HTTP server listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Stop releases the storage backend
func (s *Server) Stop() {
	if err := s.storage.Close(); err != nil {
		log.Printf("Failed to close storage: %v", err)
	}
}

// handleRoot handles the root endpoint
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, "Blob storage adapter is running!")
}

// handleHealth handles the health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// handleList handles GET /api/blobs?prefix=
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	keys, err := s.storage.ListBlobs(ctx, r.URL.Query().Get("prefix"))
	if err != nil {
		log.Printf("Failed to list blobs: %v", err)
		http.Error(w, "Failed to list blobs", http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"keys": keys,
	})
}

// handleBlob handles GET, PUT and DELETE on /api/blobs/{key}
func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := strings.TrimPrefix(r.URL.Path, "/api/blobs/")
	if key == "" {
		http.Error(w, "blob key is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		data, err := s.storage.DownloadBlob(ctx, key)
		if err != nil {
			if blob.IsNotFound(err) {
				http.Error(w, "blob not found", http.StatusNotFound)
				return
			}
			log.Printf("Failed to download blob: %v", err)
			http.Error(w, "Failed to download blob", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)

	case http.MethodPut:
		contentType := r.Header.Get("Content-Type")
		if err := s.storage.UploadBlob(ctx, key, r.Body, contentType); err != nil {
			log.Printf("Failed to upload blob: %v", err)
			http.Error(w, "Failed to upload blob", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)

	case http.MethodDelete:
		if err := s.storage.DeleteBlob(ctx, key); err != nil {
			log.Printf("Failed to delete blob: %v", err)
			http.Error(w, "Failed to delete blob", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleURL handles GET /api/urls/{key}. A missing blob yields a null
// URL, not an error.
func (s *Server) handleURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/urls/")
	if key == "" {
		http.Error(w, "blob key is required", http.StatusBadRequest)
		return
	}

	url, err := s.storage.GetDownloadURL(ctx, key)
	if err != nil {
		log.Printf("Failed to sign blob URL: %v", err)
		http.Error(w, "Failed to sign blob URL", http.StatusInternalServerError)
		return
	}

	var body struct {
		URL *string `json:"url"`
	}
	if url != "" {
		body.URL = &url
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

// handleFolder handles DELETE /api/folders/{prefix}
func (s *Server) handleFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prefix := strings.TrimPrefix(r.URL.Path, "/api/folders/")
	outcome, err := s.storage.DeleteBlobFolder(ctx, prefix)
	if err != nil {
		log.Printf("Failed to delete blob folder: %v", err)
		http.Error(w, "Failed to delete blob folder", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(outcome)
}

// handleContainer handles POST and DELETE on /api/container
func (s *Server) handleContainer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodPost:
		if err := s.storage.CreateContainer(ctx); err != nil {
			log.Printf("Failed to create container: %v", err)
			http.Error(w, "Failed to create container", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)

	case http.MethodDelete:
		if err := s.storage.DeleteContainer(ctx); err != nil {
			log.Printf("Failed to delete container: %v", err)
			http.Error(w, "Failed to delete container", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
