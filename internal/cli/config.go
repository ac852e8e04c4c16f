package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultServerURL = "http://localhost:8080"

	envServerURL = "REALTY_SERVER_URL"
	envToken     = "REALTY_TOKEN"
)

// CLIConfig is the per-user state kept in ~/.config/realty/config.yaml.
// Email and ExpiresAt describe the stored token and are informational only.
type CLIConfig struct {
	ServerURL string    `yaml:"server_url,omitempty"`
	Token     string    `yaml:"token,omitempty"`
	Email     string    `yaml:"email,omitempty"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
}

// tokenExpired reports whether the stored token is known to have expired.
func (c CLIConfig) tokenExpired(now time.Time) bool {
	return c.Token != "" && !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// clearSession drops everything tied to the signed-in account.
func (c *CLIConfig) clearSession() {
	c.Token = ""
	c.Email = ""
	c.ExpiresAt = time.Time{}
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "realty", "config.yaml"), nil
}

// loadConfig returns the zero config when the file does not exist.
func loadConfig() (CLIConfig, error) {
	var cfg CLIConfig

	path, err := configPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// saveConfig writes the file owner-readable only since it holds a bearer token.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// storedConfig is loadConfig for read paths, where an unreadable file
// behaves like an empty one.
func storedConfig() CLIConfig {
	cfg, err := loadConfig()
	if err != nil {
		return CLIConfig{}
	}
	return cfg
}

// getServerURL resolves the API base URL: environment, then config, then default.
func getServerURL() string {
	if v := os.Getenv(envServerURL); v != "" {
		return v
	}
	if cfg := storedConfig(); cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// getToken resolves the bearer token: environment, then config.
func getToken() string {
	if v := os.Getenv(envToken); v != "" {
		return v
	}
	return storedConfig().Token
}
