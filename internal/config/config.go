package config

import "time"

// Config is the root application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Assets   AssetsConfig   `yaml:"assets"`
	Log      LogConfig      `yaml:"log"`
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver     string `yaml:"driver"      env:"STORE_DRIVER"      env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"STORE_SQLITE_PATH" env-default:"vocfr.db"`
}

// DatabaseConfig holds PostgreSQL connection settings.
// DSN is only required when Store.Driver is "postgres".
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AssetsConfig locates bundled media and controls audio lookup.
type AssetsConfig struct {
	Dir                string `yaml:"dir"              env:"ASSETS_DIR"              env-default:"."`
	AudioExtensionsRaw string `yaml:"audio_extensions" env:"ASSETS_AUDIO_EXTENSIONS" env-default:"wav,mp3,m4a,aac"`
	ImageExtensionsRaw string `yaml:"image_extensions" env:"ASSETS_IMAGE_EXTENSIONS" env-default:"png,jpg,jpeg"`
	MemoSize           int    `yaml:"memo_size"        env:"ASSETS_MEMO_SIZE"        env-default:"512"`

	// AudioExtensions is parsed from AudioExtensionsRaw during validation.
	AudioExtensions []string `yaml:"-" env:"-"`
	// ImageExtensions is parsed from ImageExtensionsRaw during validation.
	ImageExtensions []string `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
