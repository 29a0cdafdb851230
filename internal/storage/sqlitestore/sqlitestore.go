// Package sqlitestore keeps the local state in the kv table of a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/storage"
)

type SqliteStore struct {
	db *sql.DB
}

// New wraps a database already migrated to the local state schema.
func New(db *sql.DB) *SqliteStore {
	return &SqliteStore{db: db}
}

// HandleError hides database errors behind the storage sentinels.
func (s *SqliteStore) HandleError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return storage.ErrNotExist
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		log.Error().Err(err).Msg("local database error")
		return storage.ErrInternal
	}
}

func (s *SqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidKey(key); err != nil {
		return nil, err
	}

	var value []byte
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT value, version FROM kv WHERE key = ?", key).Scan(&value, &version)
	if err != nil {
		return nil, s.HandleError(err)
	}
	if err = storage.CheckVersion(version); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SqliteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv(key, value, version, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		key, value, storage.Version, time.Now().Unix())
	return s.HandleError(err)
}

func (s *SqliteStore) Delete(ctx context.Context, key string) error {
	if err := storage.ValidKey(key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return s.HandleError(err)
}
