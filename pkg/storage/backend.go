package storage

import (
	"database/sql"
	"fmt"
	"log"

	"minikv/pkg/common"

	_ "modernc.org/sqlite"
)

// Backend is a point-in-time snapshot sink. The WAL stays the source of truth
// for recovery; a snapshot is an export that can be imported elsewhere.
type Backend interface {
	BatchWrite(records []common.Record) error
	Read(key string) ([]byte, bool)
	LoadAll() ([]common.Record, error)
	Truncate() error
	Close()
}

type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS data (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot table: %w", err)
	}

	if _, err := db.Exec(`PRAGMA synchronous = NORMAL;`); err != nil {
		log.Printf("[Snapshot] Warning: Failed to set PRAGMA: %v", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) BatchWrite(records []common.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO data (key, value) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.Key, rec.Value); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteBackend) Read(key string) ([]byte, bool) {
	var val []byte
	err := s.db.QueryRow("SELECT value FROM data WHERE key = ?", key).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Printf("[Snapshot] Read error: %v", err)
		return nil, false
	}
	return val, true
}

func (s *SQLiteBackend) LoadAll() ([]common.Record, error) {
	rows, err := s.db.Query("SELECT key, value FROM data ORDER BY key ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []common.Record
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		records = append(records, common.Record{Key: k, Value: v})
	}
	return records, rows.Err()
}

func (s *SQLiteBackend) Truncate() error {
	_, err := s.db.Exec("DELETE FROM data")
	return err
}

func (s *SQLiteBackend) Close() {
	s.db.Close()
}
