package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
)

// KV implements storage.KV on the kv table created by migrations.
type KV struct{ db *DB }

// NewKV constructs a Postgres-backed KV.
func NewKV(db *DB) *KV { return &KV{db: db} }

// Get selects the value stored under key.
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv WHERE key=$1`
	var v string
	if err := s.db.Pool.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return []byte(v), nil
}

// Set upserts the value under key.
func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err := s.db.Pool.Exec(ctx, q, key, string(value))
	return err
}

// Remove deletes key if present.
func (s *KV) Remove(ctx context.Context, key string) error {
	const q = `DELETE FROM kv WHERE key=$1`
	_, err := s.db.Pool.Exec(ctx, q, key)
	return err
}

// Close closes the pool.
func (s *KV) Close() error {
	s.db.Close()
	return nil
}
