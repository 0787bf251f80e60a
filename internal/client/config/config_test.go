package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func writeTempFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, "session.db", c.StorePath)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, ForceLogout, c.VerificationPolicy)
	assert.False(t, c.StrictTokenFormat)
	assert.False(t, c.OfflineLogout)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "https://auth.example", "-d", "/tmp/s.db", "-i", "10", "-t", "5",
				"-p", "forceLogout", "-offline-logout", "-strict-token", "-l", "debug", "-log-format", "json", "-m", ":9091"},
			expected: &Config{
				ServerURL:           "https://auth.example",
				StorePath:           "/tmp/s.db",
				OnlineCheckInterval: 10 * time.Second,
				RequestTimeout:      5 * time.Second,
				VerificationPolicy:  ForceLogout,
				OfflineLogout:       true,
				StrictTokenFormat:   true,
				LogLevel:            "debug",
				LogFormat:           "json",
				MetricsAddr:         ":9091",
			},
		},
		{
			name: "unknown flags are ignored",
			args: []string{"-x", "1", "-a", "http://h:1", "-c", "cfg.json"},
			expected: func() *Config {
				c := defaults()
				c.ServerURL = "http://h:1"
				return c
			}(),
		},
		{name: "incorrect check interval", args: []string{"-i", "abc"}, wantErr: true},
		{name: "unknown policy", args: []string{"-p", "sometimes"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_KeepsSubSecondValuesWhenFlagAbsent(t *testing.T) {
	cfg := defaults()
	cfg.OnlineCheckInterval = 500 * time.Millisecond

	require.NoError(t, parseFlags(cfg, []string{"-a", "http://h"}))
	assert.Equal(t, 500*time.Millisecond, cfg.OnlineCheckInterval)
}

func TestParseFile(t *testing.T) {
	t.Run("json overrides only given keys", func(t *testing.T) {
		path := writeTempFile(t, "cfg.json", `{
			"server_url": "https://json.example",
			"online_check_interval": "10s",
			"request_timeout": 2000000000,
			"verification_policy": "keepSession"
		}`)

		cfg := defaults()
		require.NoError(t, parseFile(cfg, []string{"-config", path}))

		want := defaults()
		want.ServerURL = "https://json.example"
		want.OnlineCheckInterval = 10 * time.Second
		want.RequestTimeout = 2 * time.Second
		want.VerificationPolicy = KeepSession
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("yaml by extension", func(t *testing.T) {
		path := writeTempFile(t, "cfg.yaml", "server_url: https://yaml.example\nstrict_token_format: true\noffline_logout: true\nrequest_timeout: 750ms\n")

		cfg := defaults()
		require.NoError(t, parseFile(cfg, []string{"-c", path}))

		assert.Equal(t, "https://yaml.example", cfg.ServerURL)
		assert.True(t, cfg.StrictTokenFormat)
		assert.True(t, cfg.OfflineLogout)
		assert.Equal(t, 750*time.Millisecond, cfg.RequestTimeout)
		assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("no flag means no changes", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseFile(cfg, nil))
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeTempFile(t, "bad.json", `{ this is not valid json`)
		require.Error(t, parseFile(defaults(), []string{"-c", path}))
	})

	t.Run("invalid policy in file", func(t *testing.T) {
		path := writeTempFile(t, "policy.json", `{"verification_policy": "maybe"}`)
		require.Error(t, parseFile(defaults(), []string{"-c", path}))
	})

	t.Run("missing file", func(t *testing.T) {
		require.Error(t, parseFile(defaults(), []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})
}

func TestParseEnv(t *testing.T) {
	t.Setenv("SITEAUTH_SERVER_URL", "https://env.example")
	t.Setenv("SITEAUTH_REQUEST_TIMEOUT", "7s")
	t.Setenv("SITEAUTH_VERIFICATION_POLICY", "keepSession")
	t.Setenv("SITEAUTH_STRICT_TOKEN_FORMAT", "true")
	t.Setenv("SITEAUTH_OFFLINE_LOGOUT", "true")

	cfg := defaults()
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "https://env.example", cfg.ServerURL)
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
	assert.Equal(t, KeepSession, cfg.VerificationPolicy)
	assert.True(t, cfg.StrictTokenFormat)
	assert.True(t, cfg.OfflineLogout)
	assert.Equal(t, "session.db", cfg.StorePath)
}

func TestParseEnv_InvalidPolicy(t *testing.T) {
	t.Setenv("SITEAUTH_VERIFICATION_POLICY", "never")
	require.Error(t, parseEnv(defaults()))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempFile(t, "cfg.json", `{"server_url": "https://file.example", "store_path": "/file.db", "log_level": "warn"}`)
	t.Setenv("SITEAUTH_STORE_PATH", "/env.db")
	t.Setenv("SITEAUTH_LOG_LEVEL", "error")

	cfg, err := Load([]string{"-c", path, "-l", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "https://file.example", cfg.ServerURL)
	assert.Equal(t, "/env.db", cfg.StorePath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.ServerURL = "localhost:8080" }},
		{"empty store", func(c *Config) { c.StorePath = "" }},
		{"zero interval", func(c *Config) { c.OnlineCheckInterval = 0 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"bad policy", func(c *Config) { c.VerificationPolicy = "x" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoad_InvalidResultFails(t *testing.T) {
	_, err := Load([]string{"-a", "not a url"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
