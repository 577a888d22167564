package config

import "time"

// Config represents the full LeadFive tooling configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Jekyll site layout and post defaults
	Site SiteConfig `yaml:"site" mapstructure:"site"`

	// Image usage ledger
	Ledger LedgerConfig `yaml:"ledger" mapstructure:"ledger"`

	// Stock photo provider
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`

	// Where featured images are published
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Generated placeholder images
	Fallback FallbackConfig `yaml:"fallback" mapstructure:"fallback"`

	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Secrets are only read from the environment
	Secrets Secrets `yaml:"-" mapstructure:"-"`
}

// SiteConfig locates the site checkout and sets post defaults
type SiteConfig struct {
	PostsDir        string `yaml:"posts_dir" mapstructure:"posts_dir"`
	ImageDir        string `yaml:"image_dir" mapstructure:"image_dir"`
	ImageURLPrefix  string `yaml:"image_url_prefix" mapstructure:"image_url_prefix"`
	Author          string `yaml:"author" mapstructure:"author"`
	Layout          string `yaml:"layout" mapstructure:"layout"`
	DefaultCategory string `yaml:"default_category" mapstructure:"default_category"`
}

// LedgerConfig configures the image usage ledger
type LedgerConfig struct {
	Backend string        `yaml:"backend" mapstructure:"backend"`
	Path    string        `yaml:"path" mapstructure:"path"`
	Window  time.Duration `yaml:"window" mapstructure:"window"`
}

// ProviderConfig configures the Unsplash client and candidate search
type ProviderConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	PerPage       int           `yaml:"per_page" mapstructure:"per_page"`
	MaxPage       int           `yaml:"max_page" mapstructure:"max_page"`
	Orientation   string        `yaml:"orientation" mapstructure:"orientation"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	DownloadWidth int           `yaml:"download_width" mapstructure:"download_width"`
}

// StorageConfig selects the image sink
type StorageConfig struct {
	Backend string   `yaml:"backend" mapstructure:"backend"`
	S3      S3Config `yaml:"s3" mapstructure:"s3"`
}

// S3Config locates an S3-compatible bucket. Credentials come from Secrets.
type S3Config struct {
	Endpoint      string `yaml:"endpoint" mapstructure:"endpoint"`
	Bucket        string `yaml:"bucket" mapstructure:"bucket"`
	UseSSL        bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	PublicBaseURL string `yaml:"public_base_url" mapstructure:"public_base_url"`
	Prefix        string `yaml:"prefix" mapstructure:"prefix"`
}

// FallbackConfig configures placeholder rendering. An empty FontPath looks
// for an installed Japanese font.
type FallbackConfig struct {
	FontPath string `yaml:"font_path" mapstructure:"font_path"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level    string `yaml:"level" mapstructure:"level"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Secrets holds credentials read from the environment
type Secrets struct {
	UnsplashAccessKey string `envconfig:"UNSPLASH_ACCESS_KEY"`
	S3AccessKey       string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey       string `envconfig:"S3_SECRET_KEY"`
}
