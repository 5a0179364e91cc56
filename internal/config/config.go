package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string    `json:"serverAddress"`
	Storage       Storage   `json:"storage"`
	Upload        Upload    `json:"upload"`
	Telemetry     Telemetry `json:"telemetry"`
	LogLevel      string    `json:"logLevel"`
}

// Storage selects and configures the key-value backend holding the gallery
type Storage struct {
	Backend             string `json:"backend"`
	Dir                 string `json:"dir"`
	DatabasePath        string `json:"databasePath"`
	DatabaseURL         string `json:"databaseUrl"`
	S3                  S3     `json:"s3"`
	WriteTimeoutSeconds int    `json:"writeTimeoutSeconds"`
}

// S3 configuration for the object storage backend
type S3 struct {
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	Prefix          string `json:"prefix"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
}

// Upload configuration
type Upload struct {
	MaxFileSizeMB     int64    `json:"maxFileSizeMB"`
	AllowedExtensions []string `json:"allowedExtensions"`
}

// Telemetry configures OpenTelemetry export. Spans and metrics are only
// exported when Enabled is set.
type Telemetry struct {
	Enabled               bool    `json:"enabled"`
	Endpoint              string  `json:"endpoint"`
	Environment           string  `json:"environment"`
	SampleRatio           float64 `json:"sampleRatio"`
	ExportIntervalSeconds int     `json:"exportIntervalSeconds"`
}

// ExportInterval returns the metric export period
func (t Telemetry) ExportInterval() time.Duration {
	return time.Duration(t.ExportIntervalSeconds) * time.Second
}

// WriteTimeout returns the per-write storage deadline
func (s Storage) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		Storage: Storage{
			Backend:             BackendFile,
			Dir:                 "./data",
			DatabasePath:        "gallery.db",
			WriteTimeoutSeconds: 5,
			S3: S3{
				Region: "us-east-1",
				Prefix: "gallery/",
			},
		},
		Upload: Upload{
			MaxFileSizeMB: 10,
			AllowedExtensions: []string{
				".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg",
			},
		},
		Telemetry: Telemetry{
			Endpoint:              "localhost:4317",
			Environment:           "development",
			SampleRatio:           1,
			ExportIntervalSeconds: 30,
		},
		LogLevel: "info",
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Backend == BackendFile {
		absPath, err := filepath.Abs(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		cfg.Storage.Dir = absPath
	}

	return cfg, nil
}

// applyEnv overrides cfg from environment variables
func applyEnv(cfg *Config) {
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = strings.ToLower(backend)
	}
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		cfg.Storage.Dir = dir
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.Storage.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Storage.DatabaseURL = dbURL
		// a database URL alone is enough to pick postgres
		if os.Getenv("STORAGE_BACKEND") == "" {
			cfg.Storage.Backend = BackendPostgres
		}
	}
	if timeout := os.Getenv("STORAGE_WRITE_TIMEOUT_SECONDS"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			cfg.Storage.WriteTimeoutSeconds = seconds
		}
	}

	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.Storage.S3.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.Storage.S3.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.Storage.S3.Endpoint = endpoint
	}
	if prefix, ok := os.LookupEnv("S3_PREFIX"); ok {
		cfg.Storage.S3.Prefix = prefix
	}
	if key := os.Getenv("S3_ACCESS_KEY_ID"); key != "" {
		cfg.Storage.S3.AccessKeyID = key
	}
	if secret := os.Getenv("S3_SECRET_ACCESS_KEY"); secret != "" {
		cfg.Storage.S3.SecretAccessKey = secret
	}

	if size := os.Getenv("UPLOAD_MAX_FILE_SIZE_MB"); size != "" {
		if mb, err := strconv.ParseInt(size, 10, 64); err == nil && mb > 0 {
			cfg.Upload.MaxFileSizeMB = mb
		}
	}

	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		cfg.Telemetry.Enabled = enabled == "true" || enabled == "1"
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Telemetry.Endpoint = endpoint
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Telemetry.Environment = env
	}
	if ratio := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); ratio != "" {
		if r, err := strconv.ParseFloat(ratio, 64); err == nil {
			cfg.Telemetry.SampleRatio = r
		}
	}
}

// Validate checks that the selected backend has what it needs
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerAddress) == "" {
		return fmt.Errorf("serverAddress is required")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return fmt.Errorf("storage.dir is required for the file backend")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.DatabasePath) == "" {
			return fmt.Errorf("storage.databasePath is required for the sqlite backend")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.DatabaseURL) == "" {
			return fmt.Errorf("storage.databaseUrl is required for the postgres backend")
		}
	case BackendS3:
		if strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
		}
		if (c.Storage.S3.AccessKeyID == "") != (c.Storage.S3.SecretAccessKey == "") {
			return fmt.Errorf("storage.s3 access key id and secret must be set together")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Storage.WriteTimeoutSeconds <= 0 {
		return fmt.Errorf("storage.writeTimeoutSeconds must be positive")
	}
	if c.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("upload.maxFileSizeMB must be positive")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sampleRatio must be between 0 and 1")
	}
	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	if c.Telemetry.ExportIntervalSeconds <= 0 {
		return fmt.Errorf("telemetry.exportIntervalSeconds must be positive")
	}
	return nil
}
