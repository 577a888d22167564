package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const dirName = ".leadfive"

// ErrInvalid is returned when a loaded configuration fails validation
var ErrInvalid = errors.New("invalid configuration")

// Load merges the global and project configuration files over the defaults,
// then reads secrets from the environment. A non-empty explicitPath replaces
// both files.
func Load(explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	if explicitPath != "" {
		if err := loadFile(explicitPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", explicitPath, err)
		}
	} else {
		for _, path := range []string{GlobalConfigPath(), ProjectConfigPath()} {
			if path == "" {
				continue
			}
			if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	secrets, err := LoadSecrets()
	if err != nil {
		return nil, err
	}
	cfg.Secrets = secrets

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// LoadSecrets reads credentials from the environment, loading a .env file in
// the working directory first if there is one. Variables already set win over
// the file.
func LoadSecrets() (Secrets, error) {
	_ = godotenv.Load()

	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return Secrets{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return s, nil
}

// Validate checks enumerations and ranges
func (c *Config) Validate() error {
	var problems []string

	switch c.Ledger.Backend {
	case LedgerJSON, LedgerSQLite:
	default:
		problems = append(problems, fmt.Sprintf("ledger.backend %q must be %q or %q", c.Ledger.Backend, LedgerJSON, LedgerSQLite))
	}
	if c.Ledger.Path == "" {
		problems = append(problems, "ledger.path is required")
	}
	if c.Ledger.Window <= 0 {
		problems = append(problems, "ledger.window must be positive")
	}

	if c.Provider.PerPage < 1 || c.Provider.PerPage > 30 {
		problems = append(problems, "provider.per_page must be between 1 and 30")
	}
	if c.Provider.MaxPage < 1 {
		problems = append(problems, "provider.max_page must be at least 1")
	}
	if c.Provider.Timeout <= 0 {
		problems = append(problems, "provider.timeout must be positive")
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Site.ImageDir == "" {
			problems = append(problems, "site.image_dir is required for local storage")
		}
	case StorageS3:
		if c.Storage.S3.Endpoint == "" || c.Storage.S3.Bucket == "" {
			problems = append(problems, "storage.s3.endpoint and storage.s3.bucket are required for s3 storage")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q must be %q or %q", c.Storage.Backend, StorageLocal, StorageS3))
	}

	if c.Site.PostsDir == "" {
		problems = append(problems, "site.posts_dir is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.encoding %q must be console or json", c.Log.Encoding))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, dirName, "config.yaml")
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, dirName, "config.yaml")
}
