package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// CacheRepository stores opaque values with an expiry time.
type CacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Cache returns the cache repository for this store.
func (s *Store) Cache() *CacheRepository {
	return &CacheRepository{db: s.db, now: time.Now}
}

// Get returns the value for key. Expired entries report ErrNotFound.
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var expiresAt time.Time

	err := r.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !r.now().Before(expiresAt) {
		return nil, ErrNotFound
	}
	return value, nil
}

// Set stores value under key until ttl elapses, replacing any previous entry.
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, r.now().Add(ttl).UTC(),
	)
	return err
}

// Purge deletes expired entries and returns how many were removed.
func (r *CacheRepository) Purge(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at <= ?`, r.now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
