// Package config loads the tool's operator-tunable settings from a TOML
// file. Every component receives its paths and knobs from here explicitly;
// nothing below the command layer reads ambient state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// FileName is the config file name under the tool's config directory.
const FileName = "config.toml"

// DefaultRegistry is the registry endpoint seeded into a new workspace's
// .npmrc. After seeding, the .npmrc alone is the source of truth.
const DefaultRegistry = "https://registry.npmmirror.com"

const appDirName = "npmge"

// Duration wraps time.Duration so TOML values like "2s" decode via
// encoding.TextUnmarshaler.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Config holds the tool settings. Absent file or absent keys fall back to
// Default values.
type Config struct {
	WorkspaceDir string   `toml:"workspace_dir"`
	Registry     string   `toml:"registry"`
	NPMBin       string   `toml:"npm_bin"`
	NodeBin      string   `toml:"node_bin"`
	MaxRetries   int      `toml:"max_retries"`
	RetryBackoff Duration `toml:"retry_backoff"`
}

// Default returns the built-in settings: a per-user XDG data directory for
// the workspace, the mirror registry, npm and node from PATH, and the
// transient-failure retry policy of 3 retries with a 1s linear backoff base.
func Default() Config {
	return Config{
		WorkspaceDir: filepath.Join(xdg.DataHome, appDirName),
		Registry:     DefaultRegistry,
		NPMBin:       "npm",
		NodeBin:      "node",
		MaxRetries:   3,
		RetryBackoff: Duration{time.Second},
	}
}

// DefaultPath returns the per-user location of the config file.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appDirName, FileName)
}

// Load reads the TOML file at path and overlays it on the defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.MaxRetries < 0 {
		return cfg, fmt.Errorf("invalid config %s: max_retries cannot be negative", path)
	}
	if cfg.RetryBackoff.Duration < 0 {
		return cfg, fmt.Errorf("invalid config %s: retry_backoff cannot be negative", path)
	}
	return cfg, nil
}
