package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the adapter configuration
type Config struct {
	Server struct {
		HTTPPort int `yaml:"http_port"`
	} `yaml:"server"`
	Blob struct {
		Driver           string `yaml:"driver"`             // s3 or fs
		BasePath         string `yaml:"base_path"`          // prefix applied to all keys
		MaxBatchSize     int    `yaml:"max_batch_size"`     // bulk delete batch ceiling
		URLExpirySeconds int    `yaml:"url_expiry_seconds"` // signed URL lifetime
		FSRoot           string `yaml:"fs_root"`            // fs driver storage root
	} `yaml:"blob"`
	AWS struct {
		Region string `yaml:"region"`
		S3     struct {
			BucketName string `yaml:"bucket_name"`
		} `yaml:"s3"`
		ElastiCache struct {
			Address string `yaml:"address"`
		} `yaml:"elasticache"`
	} `yaml:"aws"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	// Parse the YAML
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	// Set defaults
	if config.Server.HTTPPort == 0 {
		config.Server.HTTPPort = 8080
	}
	if config.Blob.Driver == "" {
		config.Blob.Driver = "s3"
	}
	if config.Blob.MaxBatchSize == 0 {
		config.Blob.MaxBatchSize = 250
	}
	if config.Blob.URLExpirySeconds == 0 {
		config.Blob.URLExpirySeconds = 900
	}
	if config.Blob.FSRoot == "" {
		config.Blob.FSRoot = "./data/blobs"
	}
	if config.AWS.Region == "" {
		config.AWS.Region = "us-west-2"
	}
	if config.AWS.S3.BucketName == "" {
		config.AWS.S3.BucketName = "contentforge-assets"
	}

	return &config, nil
}
