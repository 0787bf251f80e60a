package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/siteauth/internal/flagx"
	"github.com/dmitrijs2005/siteauth/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is a DTO used only for file unmarshalling. Pointer fields tell
// "absent" apart from zero values so a file can override a subset of the
// defaults.
type fileConfig struct {
	ServerURL           *string             `json:"server_url" yaml:"server_url"`
	StorePath           *string             `json:"store_path" yaml:"store_path"`
	OnlineCheckInterval *timex.Duration     `json:"online_check_interval" yaml:"online_check_interval"`
	RequestTimeout      *timex.Duration     `json:"request_timeout" yaml:"request_timeout"`
	VerificationPolicy  *VerificationPolicy `json:"verification_policy" yaml:"verification_policy"`
	OfflineLogout       *bool               `json:"offline_logout" yaml:"offline_logout"`
	StrictTokenFormat   *bool               `json:"strict_token_format" yaml:"strict_token_format"`
	LogLevel            *string             `json:"log_level" yaml:"log_level"`
	LogFormat           *string             `json:"log_format" yaml:"log_format"`
	MetricsAddr         *string             `json:"metrics_addr" yaml:"metrics_addr"`
}

// parseFile overlays cfg with values from the file named by -c or -config.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// No flag means no file and no changes.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	if fc.ServerURL != nil {
		cfg.ServerURL = *fc.ServerURL
	}
	if fc.StorePath != nil {
		cfg.StorePath = *fc.StorePath
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.VerificationPolicy != nil {
		cfg.VerificationPolicy = *fc.VerificationPolicy
	}
	if fc.OfflineLogout != nil {
		cfg.OfflineLogout = *fc.OfflineLogout
	}
	if fc.StrictTokenFormat != nil {
		cfg.StrictTokenFormat = *fc.StrictTokenFormat
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.MetricsAddr != nil {
		cfg.MetricsAddr = *fc.MetricsAddr
	}
}
