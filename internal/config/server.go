// Package config loads backend settings from the environment and operator
// console settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every backend environment variable.
const EnvPrefix = "PROFILEREVIEW_"

// Server configures cmd/profiled.
type Server struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	SeedFile        string        `env:"SEED_FILE"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"profilereview.db"`
	PostgresDSN   string `env:"POSTGRES_DSN"`

	BlobDriver string `env:"BLOB_DRIVER" envDefault:"memory"`
	BlobDir    string `env:"BLOB_DIR" envDefault:"archive"`
	S3         S3     `envPrefix:"S3_"`

	LockDriver string        `env:"LOCK_DRIVER" envDefault:"memory"`
	RedisURL   string        `env:"REDIS_URL"`
	LockTTL    time.Duration `env:"LOCK_TTL" envDefault:"30s"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// S3 configures the archive bucket.
type S3 struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION" envDefault:"us-east-1"`
	Prefix          string `env:"PREFIX"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	PathStyle       bool   `env:"PATH_STYLE"`
}

// LoadServer reads optional dotenv files (default .env) into the process
// environment and parses the backend configuration from it.
func LoadServer(dotenv ...string) (Server, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Server{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return ParseServer(nil)
}

// ParseServer parses the backend configuration from environ, or from the
// process environment when environ is nil.
func ParseServer(environ map[string]string) (Server, error) {
	var cfg Server
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks driver names and their required settings.
func (c Server) Validate() error {
	switch strings.ToLower(c.StorageDriver) {
	case "memory", "sqlite":
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("%sPOSTGRES_DSN required for postgres storage", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	switch strings.ToLower(c.BlobDriver) {
	case "memory", "fs":
	case "s3":
		if c.S3.Bucket == "" {
			return fmt.Errorf("%sS3_BUCKET required for s3 archive", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	switch strings.ToLower(c.LockDriver) {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("%sREDIS_URL required for redis lock", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown lock driver %q", c.LockDriver)
	}
	return nil
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
