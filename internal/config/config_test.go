package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
store:
  driver: "postgres"

database:
  dsn: "postgres://u:p@localhost:5432/vocfr"
  max_conns: 8
  min_conns: 2
  max_conn_lifetime: "2h"

assets:
  dir: "/srv/vocfr"
  audio_extensions: "mp3, .WAV"
  image_extensions: "png"
  memo_size: 64

log:
  level: "debug"
  format: "text"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Store
	if cfg.Store.Driver != DriverPostgres {
		t.Errorf("store.driver = %q, want %q", cfg.Store.Driver, DriverPostgres)
	}

	// Database
	if cfg.Database.DSN != "postgres://u:p@localhost:5432/vocfr" {
		t.Errorf("database.dsn = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxConns != 8 {
		t.Errorf("database.max_conns = %d, want 8", cfg.Database.MaxConns)
	}
	if cfg.Database.MaxConnLifetime != 2*time.Hour {
		t.Errorf("database.max_conn_lifetime = %v, want 2h", cfg.Database.MaxConnLifetime)
	}

	// Assets
	if cfg.Assets.Dir != "/srv/vocfr" {
		t.Errorf("assets.dir = %q", cfg.Assets.Dir)
	}
	if !slices.Equal(cfg.Assets.AudioExtensions, []string{"mp3", "wav"}) {
		t.Errorf("assets.audio_extensions = %v, want [mp3 wav]", cfg.Assets.AudioExtensions)
	}
	if cfg.Assets.MemoSize != 64 {
		t.Errorf("assets.memo_size = %d, want 64", cfg.Assets.MemoSize)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "text")
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ASSETS_MEMO_SIZE", "16")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Assets.MemoSize != 16 {
		t.Errorf("assets.memo_size = %d, want 16 (ENV override)", cfg.Assets.MemoSize)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
}

func TestLoad_NoFile_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("store.driver = %q, want %q (default)", cfg.Store.Driver, DriverSQLite)
	}
	if cfg.Store.SQLitePath != "vocfr.db" {
		t.Errorf("store.sqlite_path = %q, want vocfr.db (default)", cfg.Store.SQLitePath)
	}
	if !slices.Equal(cfg.Assets.AudioExtensions, []string{"wav", "mp3", "m4a", "aac"}) {
		t.Errorf("assets.audio_extensions = %v", cfg.Assets.AudioExtensions)
	}
}

func TestLoad_PostgresWithoutDSN(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORE_DRIVER", "postgres")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("expected error for postgres driver without a DSN")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid sqlite", mutate: func(c *Config) {}},
		{name: "valid postgres", mutate: func(c *Config) {
			c.Store.Driver = DriverPostgres
			c.Database.DSN = "postgres://localhost/vocfr"
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mysql" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Store.SQLitePath = "" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Driver = DriverPostgres }, wantErr: true},
		{name: "min conns above max", mutate: func(c *Config) {
			c.Store.Driver = DriverPostgres
			c.Database.DSN = "postgres://localhost/vocfr"
			c.Database.MinConns = 20
		}, wantErr: true},
		{name: "negative memo size", mutate: func(c *Config) { c.Assets.MemoSize = -1 }, wantErr: true},
		{name: "no audio extensions", mutate: func(c *Config) { c.Assets.AudioExtensionsRaw = " , " }, wantErr: true},
		{name: "bad image extension", mutate: func(c *Config) { c.Assets.ImageExtensionsRaw = "png,a/b" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseExtensions(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"wav,mp3", []string{"wav", "mp3"}},
		{" .WAV , mp3 ,, ", []string{"wav", "mp3"}},
		{"", nil},
	}
	for _, tt := range tests {
		got, err := ParseExtensions(tt.raw)
		if err != nil {
			t.Fatalf("ParseExtensions(%q): %v", tt.raw, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("ParseExtensions(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	if _, err := ParseExtensions("mp3,tar.gz"); err == nil {
		t.Error("expected error for dotted extension")
	}
}

// validConfig returns a Config that passes all validation checks.
func validConfig() Config {
	return Config{
		Store: StoreConfig{Driver: DriverSQLite, SQLitePath: "vocfr.db"},
		Database: DatabaseConfig{
			MaxConns: 10,
			MinConns: 1,
		},
		Assets: AssetsConfig{
			Dir:                ".",
			AudioExtensionsRaw: "wav,mp3,m4a,aac",
			ImageExtensionsRaw: "png,jpg,jpeg",
			MemoSize:           512,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}
