package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const upsertKV = `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`

// Get returns the value stored under key.
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (db *DB) Set(key, value string) error {
	_, err := db.Exec(upsertKV, key, value, time.Now().UnixMilli())
	return err
}

// SetMany stores all entries in one transaction.
func (db *DB) SetMany(entries map[string]string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for key, value := range entries {
		if _, err := tx.Exec(upsertKV, key, value, now); err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// Remove deletes key. Removing a missing key is not an error.
func (db *DB) Remove(key string) error {
	_, err := db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// RemoveMany deletes all keys in one transaction.
func (db *DB) RemoveMany(keys ...string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, key := range keys {
		if _, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("remove %q: %w", key, err)
		}
	}
	return tx.Commit()
}
