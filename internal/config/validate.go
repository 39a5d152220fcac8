package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the %s driver", DriverPostgres)
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the %s driver", DriverSQLite)
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q (got %q)", DriverPostgres, DriverSQLite, c.Store.Driver)
	}

	if err := c.Assets.validate(); err != nil {
		return fmt.Errorf("assets: %w", err)
	}

	return nil
}

func (a *AssetsConfig) validate() error {
	if a.MemoSize < 0 {
		return fmt.Errorf("memo_size must be >= 0 (got %d)", a.MemoSize)
	}

	audio, err := ParseExtensions(a.AudioExtensionsRaw)
	if err != nil {
		return fmt.Errorf("audio_extensions: %w", err)
	}
	if len(audio) == 0 {
		return fmt.Errorf("audio_extensions must list at least one extension")
	}
	a.AudioExtensions = audio

	images, err := ParseExtensions(a.ImageExtensionsRaw)
	if err != nil {
		return fmt.Errorf("image_extensions: %w", err)
	}
	a.ImageExtensions = images

	return nil
}

// ParseExtensions parses a comma-separated extension list ("wav, .mp3,m4a")
// into lowercase extensions without the leading dot, preserving order.
// An empty string returns a nil slice.
func ParseExtensions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(p), "."))
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "./\\ ") {
			return nil, fmt.Errorf("invalid extension %q", p)
		}
		exts = append(exts, p)
	}

	return exts, nil
}
