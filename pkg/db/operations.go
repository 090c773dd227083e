package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CacheRow is one stored memoization entry.
type CacheRow struct {
	Key       string
	Payload   []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// GetCacheEntry returns the entry for key, or found=false.
func (db *DB) GetCacheEntry(key string) (*CacheRow, bool, error) {
	var row CacheRow
	var created, expires int64

	err := db.QueryRow(`
		SELECT cache_key, payload, created_at, expires_at
		FROM audit_cache WHERE cache_key = ?
	`, key).Scan(&row.Key, &row.Payload, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	row.CreatedAt = time.Unix(0, created)
	row.ExpiresAt = time.Unix(0, expires)
	return &row, true, nil
}

// PutCacheEntry inserts or replaces the entry for key.
func (db *DB) PutCacheEntry(key string, payload []byte, createdAt, expiresAt time.Time) error {
	_, err := db.Exec(`
		INSERT INTO audit_cache (cache_key, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, key, payload, createdAt.UnixNano(), expiresAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

// DeleteCacheEntry removes key if present.
func (db *DB) DeleteCacheEntry(key string) error {
	if _, err := db.Exec("DELETE FROM audit_cache WHERE cache_key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// PurgeExpired deletes entries that expired at or before now and returns how many.
func (db *DB) PurgeExpired(now time.Time) (int64, error) {
	res, err := db.Exec("DELETE FROM audit_cache WHERE expires_at <= ?", now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired entries: %w", err)
	}
	return res.RowsAffected()
}
