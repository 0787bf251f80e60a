// Package config handles configuration for the development auth server,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the development auth server.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP endpoint.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default outside development.
//   - AccessTokenValidityDuration: bearer token lifetime.
//   - HandleLogins: answer login and register with a one-time tokenId instead of the token.
//   - HandleValidityDuration: how long a tokenId can be exchanged.
//   - AdminEmails: accounts registered with these emails get the admin role.
//   - LogLevel: slog level.
//   - MetricsEnabled: serve Prometheus metrics on /metrics.
//   - FlatProfile: answer /auth/profile with the user fields directly in data.
type Config struct {
	EndpointAddr                string        `env:"SITEAUTH_SERVER_ADDR"`
	SecretKey                   string        `env:"SITEAUTH_SERVER_SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"SITEAUTH_SERVER_TOKEN_TTL"`
	HandleLogins                bool          `env:"SITEAUTH_SERVER_HANDLE_LOGINS"`
	HandleValidityDuration      time.Duration `env:"SITEAUTH_SERVER_HANDLE_TTL"`
	AdminEmails                 []string      `env:"SITEAUTH_SERVER_ADMIN_EMAILS" envSeparator:","`
	LogLevel                    string        `env:"SITEAUTH_SERVER_LOG_LEVEL"`
	MetricsEnabled              bool          `env:"SITEAUTH_SERVER_METRICS"`
	FlatProfile                 bool          `env:"SITEAUTH_SERVER_FLAT_PROFILE"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.HandleLogins = false
	c.HandleValidityDuration = 1 * time.Minute
	c.AdminEmails = nil
	c.LogLevel = "info"
	c.MetricsEnabled = true
}

// Load builds a Config by applying defaults, then overlaying values from an
// optional JSON file, the environment and finally command-line flags. args
// excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("empty secret key")
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args; it panics on error.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
