package store

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the profile's session database. It holds a single key-value table
// and implements session.Storage.
type DB struct {
	*sql.DB
	path string
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_synchronous", "NORMAL")
	return "file:" + path + "?" + q.Encode()
}

// Open opens (creating if needed) the database at path. Callers run
// Migrate before using it.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open session db %s: %w", path, err)
	}
	// One writer keeps SetMany transactions from contending with Get.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping session db %s: %w", path, err)
	}
	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}
