package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the structure of config.yml used by the tool. Values the
// components need are passed in explicitly from here; there is no
// package-level mutable state.
type Config struct {
	Azure struct {
		BaseURL      string `yaml:"base_url"`
		APIVersion   string `yaml:"api_version"`
		TenantID     string `yaml:"tenant_id"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		AccessToken  string `yaml:"access_token"`
	} `yaml:"azure"`
	Purchase struct {
		DelaySeconds   float64 `yaml:"delay_seconds"`
		MaxAttempts    int     `yaml:"max_attempts"`
		BackoffSeconds float64 `yaml:"backoff_seconds"`
	} `yaml:"purchase"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var c Config
	c.Azure.BaseURL = "https://management.azure.com"
	c.Azure.APIVersion = "2022-11-01"
	c.Purchase.DelaySeconds = 1
	c.Purchase.MaxAttempts = 3
	c.Purchase.BackoffSeconds = 1
	return &c
}

// Load parses the YAML configuration file at path. A missing file is not an
// error: defaults plus environment overrides still make a usable config.
// AZURE_TENANT_ID, AZURE_CLIENT_ID, AZURE_CLIENT_SECRET and
// AZURE_ACCESS_TOKEN take precedence over file values.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("no config file, using defaults", "path", path)
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		slog.Info(fmt.Sprintf("Loaded config: %s", path))
	}

	applyEnv(&c.Azure.TenantID, "AZURE_TENANT_ID")
	applyEnv(&c.Azure.ClientID, "AZURE_CLIENT_ID")
	applyEnv(&c.Azure.ClientSecret, "AZURE_CLIENT_SECRET")
	applyEnv(&c.Azure.AccessToken, "AZURE_ACCESS_TOKEN")

	if c.Purchase.MaxAttempts < 1 {
		c.Purchase.MaxAttempts = 1
	}
	return c, nil
}

// Path returns the config file location: CONFIG_PATH or ./config.yml.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config.yml"
}

func applyEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Delay is the pause between consecutive purchase calls.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Purchase.DelaySeconds * float64(time.Second))
}

// Backoff is the fixed wait between transport retry attempts.
func (c *Config) Backoff() time.Duration {
	return time.Duration(c.Purchase.BackoffSeconds * float64(time.Second))
}
