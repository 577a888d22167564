package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore keeps the ledger in a sqlite table
type SQLiteStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

// usageRow mirrors the image_usage table; used_at stays a string so that
// malformed values survive a round trip the same way they do in JSON.
type usageRow struct {
	Seq     int64  `db:"seq"`
	PhotoID string `db:"photo_id"`
	UsedAt  string `db:"used_at"`
	Path    string `db:"path"`
	Post    string `db:"post"`
}

// NewSQLiteStore opens (creating if needed) the database at dbPath
func NewSQLiteStore(dbPath string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dbPath = expandHome(dbPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	store := &SQLiteStore{db: db, log: log}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate ledger database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS image_usage (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			photo_id TEXT NOT NULL,
			used_at TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '',
			post TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_image_usage_photo ON image_usage(photo_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns every record in insertion order
func (s *SQLiteStore) Load(ctx context.Context) []UsageRecord {
	var rows []usageRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT seq, photo_id, used_at, path, post FROM image_usage ORDER BY seq`)
	if err != nil {
		s.log.Warn("ledger query failed, starting empty", zap.Error(err))
		return []UsageRecord{}
	}

	records := make([]UsageRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, UsageRecord{
			PhotoID: row.PhotoID,
			UsedAt:  ParseTimestamp(row.UsedAt),
			Path:    row.Path,
			Post:    row.Post,
		})
	}
	return records
}

// Save replaces the table contents in a single transaction
func (s *SQLiteStore) Save(ctx context.Context, records []UsageRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM image_usage`); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}

	for _, r := range records {
		row := usageRow{
			PhotoID: r.PhotoID,
			UsedAt:  r.UsedAt.String(),
			Path:    r.Path,
			Post:    r.Post,
		}
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO image_usage (photo_id, used_at, path, post)
			 VALUES (:photo_id, :used_at, :path, :post)`, row)
		if err != nil {
			return fmt.Errorf("failed to insert ledger record %s: %w", r.PhotoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}

	s.log.Debug("ledger saved", zap.Int("records", len(records)))
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
