// Package config loads the optional start-up file (~/.diarydekrc).
//
// The file is JSON, for example
//
//	{
//	    "database": "~/Dropbox/diarydek.db",
//	    "separator": ":"
//	}
//
// JSON is valid YAML, so the file is decoded with the YAML parser, which also
// lets users write the same keys in plain YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRCFile    = "~/.diarydekrc"
	DefaultDatabase  = "~/diarydek.db"
	DefaultSeparator = ":"
)

// Config holds the settings threaded into the journal
type Config struct {
	Database  string `yaml:"database"`
	Separator string `yaml:"separator"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{Database: DefaultDatabase, Separator: DefaultSeparator}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	full, err := ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if file.Database != "" {
		cfg.Database = file.Database
	}
	if file.Separator != "" {
		cfg.Separator = file.Separator
	}
	return cfg, nil
}

// DatabasePath returns the database location with ~ expanded
func (c Config) DatabasePath() (string, error) {
	if strings.TrimSpace(c.Database) == "" {
		return "", errors.New("no database path configured")
	}
	return ExpandHome(c.Database)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
