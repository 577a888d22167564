// Package storage writes generated artifacts (featured images and their
// credit files) to where the site will serve them from.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Sink stores a named artifact and returns its site-relative path
type Sink interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// LocalSink writes artifacts into a directory of the site checkout
type LocalSink struct {
	dir       string
	urlPrefix string
	log       *zap.Logger
}

// NewLocalSink creates a sink writing into dir and serving from urlPrefix
func NewLocalSink(dir, urlPrefix string, log *zap.Logger) *LocalSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalSink{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		log:       log,
	}
}

// Dir returns the target directory
func (s *LocalSink) Dir() string {
	return s.dir
}

// Put writes data to dir/name, replacing any existing file
func (s *LocalSink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	s.log.Debug("artifact written",
		zap.String("path", path),
		zap.Int("bytes", len(data)))

	return s.urlPrefix + "/" + name, nil
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid artifact name: %q", name)
	}
	return nil
}
