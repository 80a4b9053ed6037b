// Package config loads the server configuration from an optional TOML
// file, applying defaults for anything not set. The PORT environment
// variable overrides the configured listen address, matching the
// hosting platform convention.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML files can use values like "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = parsed

	return nil
}

type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `toml:"listen_addr"`

	// WorkDir is the root for request-scoped temporary storage.
	WorkDir string `toml:"work_dir"`

	// MaxUploadBytes caps the size of an uploaded document.
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// ScopeMaxAge is how long a leaked scope directory may linger
	// before the janitor removes it.
	ScopeMaxAge Duration `toml:"scope_max_age"`

	// JanitorInterval is the sweep period.
	JanitorInterval Duration `toml:"janitor_interval"`
}

func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		WorkDir:         "files/work",
		MaxUploadBytes:  16 << 20,
		ScopeMaxAge:     Duration{5 * time.Minute},
		JanitorInterval: Duration{time.Minute},
	}
}

// Load reads the configuration file at path. An empty path or a missing
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}

	if cfg.MaxUploadBytes <= 0 {
		return cfg, fmt.Errorf("max_upload_bytes must be positive, got %d", cfg.MaxUploadBytes)
	}

	return cfg, nil
}
