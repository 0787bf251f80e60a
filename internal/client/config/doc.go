// Package config loads runtime configuration for the siteauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml/.yml are read as YAML, anything else as JSON.
//  3. SITEAUTH_* environment variables.
//  4. Command-line flags, which override everything before them.
//
// # File schema
//
// Intervals may be strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://auth.example.com",
//	  "store_path": "/var/lib/siteauth/session.db",
//	  "online_check_interval": "3s",
//	  "request_timeout": "15s",
//	  "verification_policy": "forceLogout",
//	  "offline_logout": false,
//	  "strict_token_format": false,
//	  "log_level": "info",
//	  "log_format": "text",
//	  "metrics_addr": ":9091"
//	}
//
// # Environment
//
//	SITEAUTH_SERVER_URL, SITEAUTH_STORE_PATH, SITEAUTH_ONLINE_CHECK_INTERVAL,
//	SITEAUTH_REQUEST_TIMEOUT, SITEAUTH_VERIFICATION_POLICY,
//	SITEAUTH_OFFLINE_LOGOUT, SITEAUTH_STRICT_TOKEN_FORMAT, SITEAUTH_LOG_LEVEL, SITEAUTH_LOG_FORMAT,
//	SITEAUTH_METRICS_ADDR
package config
