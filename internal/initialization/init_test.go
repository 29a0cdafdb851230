package initialization

import (
	"context"
	"errors"
	"testing"

	"github.com/sidereusnuntius/campus/internal/config"
	"github.com/sidereusnuntius/campus/internal/storage"
)

func TestOpenStorage(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.StorageConfig
	}{
		{"file", config.StorageConfig{Driver: config.FileDriver}},
		{"sqlite", config.StorageConfig{Driver: config.SqliteDriver, Migrations: "../../migrations"}},
		{"sealed file", config.StorageConfig{Driver: config.FileDriver, Secret: "s3cret"}},
		{"sealed sqlite", config.StorageConfig{Driver: config.SqliteDriver, Migrations: "../../migrations", Secret: "s3cret"}},
	}

	ctx := context.Background()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.cfg.Path = t.TempDir()
			s, closer, err := OpenStorage(ctx, c.cfg)
			if err != nil {
				t.Fatal(err)
			}
			defer closer()

			if _, err = s.Get(ctx, storage.KeyToken); !errors.Is(err, storage.ErrNotExist) {
				t.Errorf("expected an empty store, got %v", err)
			}
			if err = s.Set(ctx, storage.KeyThemeMode, []byte("dark")); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get(ctx, storage.KeyThemeMode)
			if err != nil || string(got) != "dark" {
				t.Errorf("unexpected %q, %v", got, err)
			}
		})
	}
}

func TestOpenStorageErrors(t *testing.T) {
	ctx := context.Background()
	if _, _, err := OpenStorage(ctx, config.StorageConfig{Driver: "redis", Path: t.TempDir()}); err == nil {
		t.Error("unknown driver accepted")
	}
	if _, _, err := OpenStorage(ctx, config.StorageConfig{Driver: config.SqliteDriver, Path: t.TempDir(), Migrations: "does-not-exist"}); err == nil {
		t.Error("missing migrations accepted")
	}
}
