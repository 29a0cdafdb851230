package sqlitestore_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/initialization"
	"github.com/sidereusnuntius/campus/internal/storage"
	"github.com/sidereusnuntius/campus/internal/storage/sqlitestore"
)

var db *sql.DB
var store *sqlitestore.SqliteStore
var ctx = context.Background()

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "sqlitestore")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup tests")
	}

	db, err = initialization.OpenDB(filepath.Join(dir, initialization.DBName))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err = initialization.SetupDB(db, "../../../migrations", initialization.DBName); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	store = sqlitestore.New(db)

	code := m.Run()
	db.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	if err := initialization.SetupDB(db, "../../../migrations", initialization.DBName); err != nil {
		t.Errorf("second migration run failed: %s", err)
	}
}

func TestSetGet(t *testing.T) {
	cases := []struct {
		Casename string
		Key      string
		Value    []byte
		Err      error
	}{
		{"token", storage.KeyToken, []byte("header.payload.signature"), nil},
		{"overwrite", storage.KeyToken, []byte("another"), nil},
		{"user", storage.KeyUser, []byte(`{"id":"1","name":"Ada"}`), nil},
		{"nil value", storage.KeyThemeMode, nil, nil},
		{"invalid key", "auth token", []byte("x"), storage.ErrInvalidKey},
	}

	for _, c := range cases {
		t.Run(c.Casename, func(t *testing.T) {
			err := store.Set(ctx, c.Key, c.Value)
			if !errors.Is(err, c.Err) {
				t.Fatalf("expected %v, got %v", c.Err, err)
			}
			if c.Err != nil {
				return
			}

			got, err := store.Get(ctx, c.Key)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if string(got) != string(c.Value) {
				t.Errorf("expected %q, got %q", c.Value, got)
			}

			var version int
			if err = db.QueryRow("SELECT version FROM kv WHERE key = ?", c.Key).Scan(&version); err != nil {
				t.Fatal(err)
			}
			if version != storage.Version {
				t.Errorf("expected version %d, got %d", storage.Version, version)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("expected %s, got %v", storage.ErrNotExist, err)
	}
}

func TestGetFutureVersion(t *testing.T) {
	if _, err := db.Exec("INSERT INTO kv(key, value, version, updated_at) VALUES ('future', x'00', 99, 0)"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "future"); !errors.Is(err, storage.ErrCorrupt) {
		t.Errorf("expected %s, got %v", storage.ErrCorrupt, err)
	}
}

func TestDelete(t *testing.T) {
	if err := store.Set(ctx, "moribundus", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "moribundus"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "moribundus"); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("expected %s, got %v", storage.ErrNotExist, err)
	}
	if err := store.Delete(ctx, "moribundus"); err != nil {
		t.Errorf("deleting a missing key failed: %s", err)
	}
}
