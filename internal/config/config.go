package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL matches the backend's development listener.
	DefaultAPIURL = "http://localhost:8080/api"

	// DefaultTimeout bounds every outbound request.
	DefaultTimeout = 10 * time.Second

	// EnvAPIURL overrides the base API URL without touching the config file.
	EnvAPIURL = "SHOPCTL_API_URL"
)

// Config holds client configuration. The base API URL is the single
// override point for pointing the client at another backend.
type Config struct {
	APIURL  string
	Timeout time.Duration

	// ProfileDir holds the cookie jar and the session snapshot. It is
	// also where the config file itself lives.
	ProfileDir string
}

// DefaultProfileDir returns ~/.shopctl, creating it with 0700 permissions.
func DefaultProfileDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".shopctl")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create profile directory: %w", err)
	}

	return dir, nil
}

// Load reads <profileDir>/config.yaml if present and applies the
// SHOPCTL_API_URL environment override. A missing file is not an error;
// defaults apply.
func Load(profileDir string) (*Config, error) {
	if profileDir == "" {
		dir, err := DefaultProfileDir()
		if err != nil {
			return nil, err
		}
		profileDir = dir
	}

	cfg := &Config{
		APIURL:     DefaultAPIURL,
		Timeout:    DefaultTimeout,
		ProfileDir: profileDir,
	}

	path := filepath.Join(profileDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file struct {
		APIURL  string `yaml:"apiUrl"`
		Timeout string `yaml:"timeout"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if file.APIURL != "" {
		cfg.APIURL = file.APIURL
	}
	if file.Timeout != "" {
		timeout, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timeout: %w", err)
		}
		cfg.Timeout = timeout
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if url := os.Getenv(EnvAPIURL); url != "" {
		c.APIURL = url
	}
}

// CookieJarPath returns the path of the on-disk cookie jar. Application
// code never reads this file; it belongs to the HTTP client.
func (c *Config) CookieJarPath() string {
	return filepath.Join(c.ProfileDir, "cookies.json")
}

// SnapshotPath returns the path of the session snapshot file.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.ProfileDir, "session.json")
}

// LegacyStatePath returns the path of the pre-cookie-era state file that
// startup migration retires.
func (c *Config) LegacyStatePath() string {
	return filepath.Join(c.ProfileDir, "state.json")
}
