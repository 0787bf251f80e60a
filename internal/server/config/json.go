package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/siteauth/internal/flagx"
	"github.com/dmitrijs2005/siteauth/internal/timex"
)

// JsonConfig is a DTO used only for reading JSON configuration files.
// Pointer fields mark which keys the file actually sets.
type JsonConfig struct {
	EndpointAddr                *string         `json:"endpoint_addr"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	HandleLogins                *bool           `json:"handle_logins"`
	HandleValidityDuration      *timex.Duration `json:"handle_validity_duration"`
	AdminEmails                 []string        `json:"admin_emails"`
	LogLevel                    *string         `json:"log_level"`
	MetricsEnabled              *bool           `json:"metrics_enabled"`
	FlatProfile                 *bool           `json:"flat_profile"`
}

// parseJson loads values from the JSON file named by -c or -config into
// config. Without the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.HandleLogins != nil {
		config.HandleLogins = *c.HandleLogins
	}
	if c.HandleValidityDuration != nil {
		config.HandleValidityDuration = c.HandleValidityDuration.Duration
	}
	if c.AdminEmails != nil {
		config.AdminEmails = c.AdminEmails
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.MetricsEnabled != nil {
		config.MetricsEnabled = *c.MetricsEnabled
	}
	if c.FlatProfile != nil {
		config.FlatProfile = *c.FlatProfile
	}
	return nil
}
