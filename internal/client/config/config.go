package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
)

// ErrInvalidConfig is returned by Validate and Load for unusable settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the siteauth CLI.
//
// Fields:
//   - ServerURL: base URL of the authentication server.
//   - StorePath: path of the local SQLite session store.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: upper bound for a single HTTP request.
//   - VerificationPolicy: what happens to the session when startup
//     verification fails.
//   - OfflineLogout: with ForceLogout, also sign out when the server cannot
//     be reached during verification. Off by default.
//   - StrictTokenFormat: require tokens to look like compact JWTs.
//   - LogLevel, LogFormat: slog level and handler ("text" or "json").
//   - MetricsAddr: optional listen address for /metrics; empty disables it.
type Config struct {
	ServerURL           string             `env:"SITEAUTH_SERVER_URL"`
	StorePath           string             `env:"SITEAUTH_STORE_PATH"`
	OnlineCheckInterval time.Duration      `env:"SITEAUTH_ONLINE_CHECK_INTERVAL"`
	RequestTimeout      time.Duration      `env:"SITEAUTH_REQUEST_TIMEOUT"`
	VerificationPolicy  VerificationPolicy `env:"SITEAUTH_VERIFICATION_POLICY"`
	OfflineLogout       bool               `env:"SITEAUTH_OFFLINE_LOGOUT"`
	StrictTokenFormat   bool               `env:"SITEAUTH_STRICT_TOKEN_FORMAT"`
	LogLevel            string             `env:"SITEAUTH_LOG_LEVEL"`
	LogFormat           string             `env:"SITEAUTH_LOG_FORMAT"`
	MetricsAddr         string             `env:"SITEAUTH_METRICS_ADDR"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.StorePath = "session.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.VerificationPolicy = ForceLogout
	c.OfflineLogout = false
	c.StrictTokenFormat = false
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.MetricsAddr = ""
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server url %q", ErrInvalidConfig, c.ServerURL)
	}
	if c.StorePath == "" {
		return fmt.Errorf("%w: empty store path", ErrInvalidConfig)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("%w: online check interval must be positive", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	if !c.VerificationPolicy.Valid() {
		return fmt.Errorf("%w: verification policy %q", ErrInvalidConfig, c.VerificationPolicy)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// Load builds a Config from defaults, then the optional config file named by
// -c/-config, then SITEAUTH_* environment variables, then flags. Later
// sources take precedence over earlier ones. args excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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
