package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Store persists the full list of usage records
type Store interface {
	// Load returns every stored record. Missing or unreadable state yields an
	// empty list rather than an error.
	Load(ctx context.Context) []UsageRecord

	// Save replaces the stored records with records
	Save(ctx context.Context, records []UsageRecord) error

	// Close releases any resources held by the store
	Close() error
}

// JSONStore keeps the ledger in a single JSON array file
type JSONStore struct {
	path string
	log  *zap.Logger
}

// NewJSONStore creates a store backed by the file at path. A leading ~ is
// expanded to the user's home directory.
func NewJSONStore(path string, log *zap.Logger) *JSONStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONStore{
		path: expandHome(path),
		log:  log,
	}
}

// Path returns the ledger file location
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the ledger file
func (s *JSONStore) Load(ctx context.Context) []UsageRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("ledger unreadable, starting empty",
				zap.String("path", s.path),
				zap.Error(err))
		}
		return []UsageRecord{}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return []UsageRecord{}
	}

	var records []UsageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("ledger corrupt, starting empty",
			zap.String("path", s.path),
			zap.Error(err))
		return []UsageRecord{}
	}
	if records == nil {
		records = []UsageRecord{}
	}
	return records
}

// Save overwrites the ledger file with records
func (s *JSONStore) Save(ctx context.Context, records []UsageRecord) error {
	if records == nil {
		records = []UsageRecord{}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}

	s.log.Debug("ledger saved",
		zap.String("path", s.path),
		zap.Int("records", len(records)))
	return nil
}

// Close is a no-op for file-backed ledgers
func (s *JSONStore) Close() error {
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
