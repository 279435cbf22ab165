// Package config provides configuration loading and defaults for the petview server.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultGraphQLURL is the Pet Library endpoint queried when no other URL is
// configured.
const DefaultGraphQLURL = "https://pet-library.moonhighway.com"

// ServerConfig holds network and authentication settings.
type ServerConfig struct {
	Port int `yaml:"port"`
	// AuthToken protects the MCP endpoint. The pet page is always public.
	AuthToken string `yaml:"auth_token"`
}

// GraphQLConfig holds connection details for the Pet Library GraphQL API.
type GraphQLConfig struct {
	URL string `yaml:"url"`
	// Timeout is the HTTP request timeout in seconds. Zero means no timeout
	// is imposed by the client.
	Timeout int `yaml:"timeout"`
}

// AuditConfig controls audit logging behaviour.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}

// TelemetryConfig controls OpenTelemetry trace export. An empty Endpoint
// disables export.
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
}

// Config is the top-level configuration structure for the petview server.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	GraphQL   GraphQLConfig   `yaml:"graphql"`
	Audit     AuditConfig     `yaml:"audit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LoadConfig reads and parses a YAML configuration file from the given path.
// Fields absent from the file keep their DefaultConfig values. On error, nil
// is returned for the config pointer.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a new Config populated with sensible default values.
// Each call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		GraphQL: GraphQLConfig{
			URL: DefaultGraphQLURL,
		},
		Audit: AuditConfig{
			Enabled: false,
			LogPath: "/config/audit.log",
		},
		Telemetry: TelemetryConfig{
			Service: "petview",
		},
	}
}

// ApplyEnvOverrides updates cfg in place with values from environment variables.
// Recognized variables:
//   - PETVIEW_AUTH_TOKEN overrides cfg.Server.AuthToken
//   - PETVIEW_GRAPHQL_URL overrides cfg.GraphQL.URL
//   - PETVIEW_OTEL_ENDPOINT overrides cfg.Telemetry.Endpoint
func ApplyEnvOverrides(cfg *Config) {
	if token := os.Getenv("PETVIEW_AUTH_TOKEN"); token != "" {
		cfg.Server.AuthToken = token
	}
	if u := os.Getenv("PETVIEW_GRAPHQL_URL"); u != "" {
		cfg.GraphQL.URL = u
	}
	if ep := os.Getenv("PETVIEW_OTEL_ENDPOINT"); ep != "" {
		cfg.Telemetry.Endpoint = ep
	}
}

// Validate reports the first problem found in cfg.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return c.GraphQL.Validate()
}

// Validate checks that URL is an absolute http(s) URL and Timeout is not
// negative.
func (g GraphQLConfig) Validate() error {
	if g.URL == "" {
		return errors.New("graphql.url is required")
	}
	u, err := url.Parse(g.URL)
	if err != nil {
		return fmt.Errorf("graphql.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("graphql.url %q: scheme must be http or https", g.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("graphql.url %q: missing host", g.URL)
	}
	if g.Timeout < 0 {
		return fmt.Errorf("graphql.timeout %d must not be negative", g.Timeout)
	}
	return nil
}

// EnsureAuthToken generates a random auth token and sets it on cfg if
// cfg.Server.AuthToken is empty. It returns the token (existing or generated)
// and any error encountered during generation.
func EnsureAuthToken(cfg *Config) (string, error) {
	if cfg.Server.AuthToken != "" {
		return cfg.Server.AuthToken, nil
	}
	token, err := GenerateRandomToken()
	if err != nil {
		return "", fmt.Errorf("generate auth token: %w", err)
	}
	cfg.Server.AuthToken = token
	return token, nil
}

// GenerateRandomToken returns a 32-character hex-encoded cryptographically
// random token string.
func GenerateRandomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}
	return hex.EncodeToString(b), nil
}
