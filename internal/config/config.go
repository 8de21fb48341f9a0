// Package config provides bridge host configuration loaded from
// environment variables, with an optional TOML file on top.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds webbridge host configuration.
type Config struct {
	// COMMS: connect to standalone NATS at COMMSURL.
	COMMSURL  string `envconfig:"COMMS_URL" default:"nats://127.0.0.1:4222"`
	COMMSName string `envconfig:"SERVICE_NAME" default:"webbridge"`

	// Channel is the named bridge channel this host serves. It is explicit
	// configuration rather than a compiled-in constant, so several
	// independent bridges can coexist on one COMMS deployment.
	Channel string `envconfig:"BRIDGE_CHANNEL" default:"default"`

	// BridgeName identifies the host in bridge.info responses.
	BridgeName string `envconfig:"BRIDGE_NAME" default:"webbridge"`

	// Timeouts
	RequestTimeout time.Duration `envconfig:"BRIDGE_REQUEST_TIMEOUT" default:"25s"`

	// HTTP status endpoint
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// ConfigFile optionally points at a TOML file whose defined keys
	// override the values above.
	ConfigFile string `envconfig:"BRIDGE_CONFIG_FILE"`
}

// fileConfig is the TOML shape of the optional config file. Only keys the
// file actually defines override the loaded config.
type fileConfig struct {
	COMMSURL       string `toml:"comms_url"`
	Channel        string `toml:"channel"`
	BridgeName     string `toml:"bridge_name"`
	RequestTimeout string `toml:"request_timeout"`
	HTTPPort       int    `toml:"http_port"`
	LogLevel       string `toml:"log_level"`
}

// LoadConfig loads configuration from environment variables and, when
// BRIDGE_CONFIG_FILE is set, applies the file's overrides.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if c.ConfigFile != "" {
		if err := c.applyFile(c.ConfigFile); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// applyFile overrides config values with keys defined in a TOML file.
func (c *Config) applyFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("%s - load config file: %w", logPrefix, err)
	}

	if meta.IsDefined("comms_url") {
		c.COMMSURL = raw.COMMSURL
	}
	if meta.IsDefined("channel") {
		c.Channel = raw.Channel
	}
	if meta.IsDefined("bridge_name") {
		c.BridgeName = raw.BridgeName
	}
	if meta.IsDefined("request_timeout") {
		d, err := time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return fmt.Errorf("%s - parse request_timeout: %w", logPrefix, err)
		}
		c.RequestTimeout = d
	}
	if meta.IsDefined("http_port") {
		c.HTTPPort = raw.HTTPPort
	}
	if meta.IsDefined("log_level") {
		c.LogLevel = raw.LogLevel
	}
	return nil
}

// ValidateForServe checks required config when running the bridge host.
func (c *Config) ValidateForServe() error {
	if c.Channel == "" {
		return fmt.Errorf("%s - BRIDGE_CHANNEL is required for serve", logPrefix)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - BRIDGE_REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	return nil
}
