package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	LedgerJSON   = "json"
	LedgerSQLite = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Site: SiteConfig{
			PostsDir:        "_posts",
			ImageDir:        "assets/images/blog",
			ImageURLPrefix:  "/assets/images/blog",
			Author:          "LeadFive",
			Layout:          "post",
			DefaultCategory: "マーケティング",
		},
		Ledger: LedgerConfig{
			Backend: LedgerJSON,
			Path:    filepath.Join(".leadfive", "image-history.json"),
			Window:  7 * 24 * time.Hour,
		},
		Provider: ProviderConfig{
			BaseURL:       "https://api.unsplash.com",
			PerPage:       30,
			MaxPage:       3,
			Orientation:   "landscape",
			Timeout:       15 * time.Second,
			DownloadWidth: 1200,
		},
		Storage: StorageConfig{
			Backend: StorageLocal,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// WriteDefault writes the default configuration to path, creating its
// directory
func WriteDefault(path string) error {
	content := `# LeadFive blog tooling configuration
version: "1"

# Jekyll site layout, relative to the site checkout
site:
  posts_dir: _posts
  image_dir: assets/images/blog
  image_url_prefix: /assets/images/blog
  author: LeadFive
  layout: post
  default_category: マーケティング

# Image usage ledger
ledger:
  backend: json  # "json" or "sqlite"
  path: .leadfive/image-history.json
  window: 168h   # photos used within this window are not reused

# Unsplash search (UNSPLASH_ACCESS_KEY env var)
provider:
  base_url: https://api.unsplash.com
  per_page: 30
  max_page: 3
  orientation: landscape
  timeout: 15s
  download_width: 1200

# Featured image storage
storage:
  backend: local  # "local" or "s3" (S3_ACCESS_KEY, S3_SECRET_KEY env vars)
# s3:
#   endpoint: s3.amazonaws.com
#   bucket: leadfive-assets
#   use_ssl: true
#   public_base_url: https://cdn.example.com
#   prefix: blog/images

# Generated placeholder images. Leave font_path empty to use an installed
# Japanese font (Noto Sans CJK, Hiragino, Yu Gothic) when one is found.
fallback:
  font_path: ""

log:
  level: info       # debug, info, warn, error
  encoding: console # console or json

server:
  addr: 127.0.0.1:8080
`
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
