// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A '.env' file in the
working directory is loaded first when present, so local development does not
need exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, photo storage) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Storage Modes

const (
	// StorageRemote persists rows in PostgreSQL and photos in an S3-compatible bucket.
	StorageRemote = "remote"

	// StorageLocal persists whole collections in an embedded badger database
	// and photos on the local filesystem.
	StorageLocal = "local"
)

// # Configuration Schema

// Config holds all runtime configuration for the laundry API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StorageMode selects the persistence adapter: "remote" or "local".
	StorageMode string `env:"STORAGE_MODE" envDefault:"remote"`

	// Relational Database (PostgreSQL), remote mode only
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis), remote mode only
	RedisURL string `env:"REDIS_URL"`

	// Embedded storage, local mode only
	LocalDataDir string `env:"LOCAL_DATA_DIR" envDefault:"./data/local"`
	PhotoDir     string `env:"PHOTO_DIR"      envDefault:"./data/photos"`

	// Cryptographic keys for access token signing. When both are empty in
	// development an ephemeral key pair is generated at startup.
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"`

	// Object Storage (Cloudflare R2 / S3-compatible)
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"     envDefault:"auto"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	// PublicBaseURL prefixes stored photo keys to build the URL saved as photo_url.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080/photos"`

	// Laundry rules
	UncheckLimit int `env:"UNCHECK_LIMIT" envDefault:"3"`
	MaxItems     int `env:"MAX_ITEMS"     envDefault:"500"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load reads an optional .env file, then parses environment variables into a [Config].
func Load() (*Config, error) {

	// Variables already present in the environment win over the file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current environment onto a [Config] and validates it.
func Parse() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces the keys each storage mode depends on.
func (c *Config) validate() error {
	switch c.StorageMode {
	case StorageRemote:
		var missing []string
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if c.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
		if len(missing) > 0 {
			return fmt.Errorf("config: remote storage requires %s", strings.Join(missing, ", "))
		}
	case StorageLocal:
	default:
		return fmt.Errorf("config: unknown STORAGE_MODE %q (want %q or %q)", c.StorageMode, StorageRemote, StorageLocal)
	}

	if (c.JWTPrivKeyPath == "") != (c.JWTPubKeyPath == "") {
		return errors.New("config: JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together")
	}

	if c.JWTPrivKeyPath == "" && c.IsProduction() {
		return errors.New("config: JWT key paths are required in production")
	}

	if c.UncheckLimit < 0 {
		return errors.New("config: UNCHECK_LIMIT must not be negative")
	}

	if c.MaxItems <= 0 {
		return errors.New("config: MAX_ITEMS must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsLocal reports whether the embedded storage adapter is selected.
func (c *Config) IsLocal() bool {
	return c.StorageMode == StorageLocal
}

// UsesS3 reports whether photos go to an S3-compatible bucket.
func (c *Config) UsesS3() bool {
	return !c.IsLocal() && c.S3Bucket != ""
}

// AllowedOrigins returns the comma-separated EXTRA_ORIGINS as a trimmed list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
