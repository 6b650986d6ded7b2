// Package config handles global krafna configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the user-level configuration, loaded from
// ~/.config/krafna/config.toml. Every field is optional.
type Config struct {
	// DefaultFrom is a FROM clause used when a query omits one, for
	// example `FRONTMATTER_DATA("~/notes")`.
	DefaultFrom string `toml:"default_from"`

	// CachePath overrides where the parsed-document cache blob lives.
	CachePath string `toml:"cache_path"`

	// CacheCapacity bounds the number of cached documents.
	CacheCapacity int `toml:"cache_capacity"`
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, "krafna", "config.toml"), nil
}

// Load reads the configuration. A missing file yields zero-value
// defaults; a malformed one is an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
