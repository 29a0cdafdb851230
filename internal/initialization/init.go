// The init package contains functions that setup required dependencies such as the local state
// database.
package initialization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/config"
	"github.com/sidereusnuntius/campus/internal/storage"
	"github.com/sidereusnuntius/campus/internal/storage/filestore"
	"github.com/sidereusnuntius/campus/internal/storage/sqlitestore"
)

// DBName is the file name of the local state database inside the storage directory.
const DBName = "state.db"

// SetupDB applies all remaining migrations found in folder.
func SetupDB(db *sql.DB, folder, dbname string) error {
	log.Info().Msg("starting migrations")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sqlite3 migration driver")
		return err
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return err
	}
	mig, err := migrate.NewWithDatabaseInstance(
		"file://"+filepath.ToSlash(abs),
		dbname,
		driver,
	)
	if err != nil {
		log.Error().Err(err).Str("folder", folder).Msg("failed to create Migrate object")
		return err
	}

	err = mig.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug().Msg("local state schema is up to date")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to run migrations")
	}
	return err
}

func OpenDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to open database")
		return nil, err
	}
	return db, nil
}

// OpenStorage builds the local state backend described by cfg. The returned function releases it.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (s storage.Storage, closer func() error, err error) {
	closer = func() error { return nil }

	switch cfg.Driver {
	case config.FileDriver:
		if s, err = filestore.New(cfg.Path); err != nil {
			return
		}
	case config.SqliteDriver:
		if err = os.MkdirAll(cfg.Path, 0o700); err != nil {
			return
		}
		var db *sql.DB
		if db, err = OpenDB(filepath.Join(cfg.Path, DBName)); err != nil {
			return
		}
		if err = SetupDB(db, cfg.Migrations, DBName); err != nil {
			db.Close()
			return
		}
		s, closer = sqlitestore.New(db), db.Close
	default:
		return nil, closer, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	if cfg.Secret != "" {
		var sealed *storage.Sealed
		if sealed, err = storage.NewSealed(ctx, s, cfg.Secret); err != nil {
			closer()
			return nil, func() error { return nil }, err
		}
		s = sealed
	}
	log.Debug().Str("driver", cfg.Driver).Str("path", cfg.Path).Bool("sealed", cfg.Secret != "").Msg("local state opened")
	return s, closer, nil
}
