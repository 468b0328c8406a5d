package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DedupStore remembers which message IDs have already been written, so a
// re-delivered or re-broadcast chat message is never appended twice. This is
// the system-level double-write guard; the extraction engine itself stays
// freely re-runnable.
type DedupStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenDedupStore opens (or creates) the sqlite seen-message index at path.
func OpenDedupStore(path string, logger *slog.Logger) (*DedupStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dedup dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open dedup store: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS seen_messages (
			message_id TEXT PRIMARY KEY,
			seen_at    TIMESTAMP NOT NULL
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init dedup schema: %w", err)
	}
	return &DedupStore{db: db, logger: logger}, nil
}

// Seen reports whether messageID was already processed.
func (d *DedupStore) Seen(ctx context.Context, messageID string) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx,
		"SELECT 1 FROM seen_messages WHERE message_id = ?", messageID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	return true, nil
}

// Mark records messageID as processed. Marking the same ID twice is a no-op.
func (d *DedupStore) Mark(ctx context.Context, messageID string) error {
	_, err := d.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO seen_messages (message_id, seen_at) VALUES (?, ?)",
		messageID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}

func (d *DedupStore) Close() error {
	return d.db.Close()
}
