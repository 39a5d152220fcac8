package importer

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds import pipeline settings.
type Config struct {
	ContentDir   string `yaml:"content_dir"   env:"IMPORT_CONTENT_DIR"   env-default:"."`
	SearchSubdir string `yaml:"search_subdir" env:"IMPORT_SEARCH_SUBDIR" env-default:"Data/JSON"`
	BatchSize    int    `yaml:"batch_size"    env:"IMPORT_BATCH_SIZE"    env-default:"500"`
	DryRun       bool   `yaml:"dry_run"       env:"IMPORT_DRY_RUN"`
}

// SearchDirs returns the directories, relative to ContentDir, that content
// files are looked up in: the root first, then SearchSubdir.
func (c Config) SearchDirs() []string {
	if c.SearchSubdir == "" || c.SearchSubdir == "." {
		return []string{"."}
	}
	return []string{".", c.SearchSubdir}
}

// LoadConfig reads import configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("import config: read %s: %w", path, err)
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("import config: file %s not found", path)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("import config: read env: %w", err)
	}

	return &cfg, nil
}
