package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Console configures cmd/profile-review. Values come from the YAML file and
// are overridden by PROFILE_REVIEW_* environment variables.
type Console struct {
	BaseURL           string        `yaml:"baseURL" env:"BASE_URL"`
	Email             string        `yaml:"email" env:"EMAIL"`
	Language          string        `yaml:"language" env:"LANGUAGE"`
	Token             string        `yaml:"token" env:"TOKEN"`
	Diff              bool          `yaml:"diff" env:"DIFF"`
	ServerEcho        *bool         `yaml:"serverEcho" env:"SERVER_ECHO"`
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond" env:"REQUESTS_PER_SECOND"`
	Timezone          string        `yaml:"timezone" env:"TIMEZONE"`
	TraceFile         string        `yaml:"traceFile" env:"TRACE_FILE"`
	OTelEndpoint      string        `yaml:"otelEndpoint" env:"OTEL_ENDPOINT"`
}

// ConsoleEnvPrefix prefixes console environment overrides.
const ConsoleEnvPrefix = "PROFILE_REVIEW_"

// LoadConsole reads path (a missing file is not an error) and applies
// environment overrides from environ, or the process environment when nil.
func LoadConsole(path string, environ map[string]string) (Console, error) {
	cfg := Console{Language: "ro", Timeout: 30 * time.Second}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Console{}, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Console{}, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	}
	opts := env.Options{Prefix: ConsoleEnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Console{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BaseURL == "" {
		return Console{}, fmt.Errorf("baseURL required")
	}
	if cfg.Email == "" {
		return Console{}, fmt.Errorf("email required")
	}
	return cfg, nil
}

// Echo reports whether adds should wait for a server-assigned id. It
// defaults to true.
func (c Console) Echo() bool {
	return c.ServerEcho == nil || *c.ServerEcho
}

// Location resolves the configured timezone, defaulting to UTC.
func (c Console) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}
