package bintray

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL      = "https://api.bintray.com"
	DefaultDownloadURL = "https://dl.bintray.com"

	defaultRequestTimeout = 30 * time.Second
)

// Config holds client settings, usually loaded from bintray.yml.
type Config struct {
	APIURL      string `yaml:"api_url"`
	DownloadURL string `yaml:"download_url"`
	Username    string `yaml:"username"`
	APIKey      string `yaml:"api_key"`

	// RequestTimeout bounds a single probe request, not a whole wait.
	// Duration string, e.g. "30s".
	RequestTimeout string `yaml:"request_timeout"`
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.DownloadURL == "" {
		c.DownloadURL = DefaultDownloadURL
	}
}

func (c *Config) requestTimeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return defaultRequestTimeout, nil
	}
	timeout, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("parsing request_timeout: %w", err)
	}
	return timeout, nil
}

// LoadConfig reads fn, falling back to defaults when the file does not exist.
func LoadConfig(fn string) (*Config, error) {
	var cfg Config

	f, err := os.Open(fn)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("error decoding config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error opening config: %w", err)
	} else {
		slog.Info("no config file found, using defaults")
	}

	cfg.applyDefaults()
	return &cfg, nil
}
