// Package config defines the service configuration and how it is loaded.
//
// Values are layered: defaults from New, then an optional YAML file, then
// environment variables prefixed SYAROHO_.
package config

import (
	"context"
	"fmt"
	"time"

	// Asia/Tokyo must load on hosts without a zone database.
	_ "time/tzdata"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// DocsScript is an optional path to a ReDoc standalone bundle served
	// with the API docs. Empty loads ReDoc from its CDN.
	DocsScript string `koanf:"docs_script"`

	// Timezone names the zone whose midnight is the target instant.
	Timezone string `koanf:"timezone"`
	// MarkerPhrase is the exact text of a competition entry.
	MarkerPhrase string `koanf:"marker_phrase"`
	// InvalidClients lists posting clients whose entries never count.
	InvalidClients []string `koanf:"invalid_clients"`
	// LateCatchWindowMS bounds late-catch entries around the target.
	LateCatchWindowMS int `koanf:"late_catch_window_ms"`
	// BootstrapExag is the exaggeration applied to the first day of a
	// bootstrap backfill.
	BootstrapExag float64 `koanf:"bootstrap_exag"`

	// Storage selects the rating repository: file or sqlite. Observations
	// are always read from the file archive under DataDir.
	Storage    string `koanf:"storage"`
	DataDir    string `koanf:"data_dir"`
	SQLitePath string `koanf:"sqlite_path"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
	// PreviewSize is the number of entries a preview shows.
	PreviewSize int `koanf:"preview_size"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Timezone:            "Asia/Tokyo",
		MarkerPhrase:        "しゃろほー",
		InvalidClients:      []string{"twittbot.net", "IFTTT", "Botbird tweets"},
		LateCatchWindowMS:   60_000,
		BootstrapExag:       1.5,
		Storage:             StorageFile,
		DataDir:             "data",
		SQLitePath:          "data/syaroho.db",
		MaxLeaderboardLimit: 100,
		PreviewSize:         5,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MarkerPhrase == "":
		return fmt.Errorf("%w: marker_phrase must not be empty", ErrInvalidConfig)
	case c.LateCatchWindowMS <= 0:
		return fmt.Errorf("%w: late_catch_window_ms must be positive, got %d", ErrInvalidConfig, c.LateCatchWindowMS)
	case c.BootstrapExag <= 0:
		return fmt.Errorf("%w: bootstrap_exag must be positive, got %v", ErrInvalidConfig, c.BootstrapExag)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive, got %d", ErrInvalidConfig, c.MaxLeaderboardLimit)
	case c.PreviewSize <= 0:
		return fmt.Errorf("%w: preview_size must be positive, got %d", ErrInvalidConfig, c.PreviewSize)
	}
	switch c.Storage {
	case StorageFile:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// LateCatchWindow returns LateCatchWindowMS as a duration.
func (c *Config) LateCatchWindow() time.Duration {
	return time.Duration(c.LateCatchWindowMS) * time.Millisecond
}
