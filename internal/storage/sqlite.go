package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps both records in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS vip_users (
    chat_id INTEGER PRIMARY KEY,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS offsets (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    value INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
`)
	return err
}

func (s *SQLiteStore) LoadVIPs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT chat_id FROM vip_users ORDER BY created_at, chat_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vip users: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 16)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan vip user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveVIPs upserts every id. The VIP set never shrinks, so rows missing
// from ids are left in place.
func (s *SQLiteStore) SaveVIPs(ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, id := range ids {
		if _, err := tx.Exec(`INSERT INTO vip_users(chat_id, created_at) VALUES(?, ?) ON CONFLICT(chat_id) DO NOTHING`, id, now); err != nil {
			return fmt.Errorf("failed to save vip user %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadOffset() (int, bool, error) {
	var offset int
	err := s.db.QueryRow(`SELECT value FROM offsets WHERE id = 1`).Scan(&offset)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query offset: %w", err)
	}
	return offset, true, nil
}

func (s *SQLiteStore) SaveOffset(offset int) error {
	_, err := s.db.Exec(`
INSERT INTO offsets(id, value, updated_at) VALUES(1, ?, ?)
ON CONFLICT(id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		offset, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save offset: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
