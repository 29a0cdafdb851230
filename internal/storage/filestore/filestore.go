package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/storage"
)

// FileStore keeps one file per key under Root, each holding a versioned record.
type FileStore struct {
	Root string
}

func New(root string) (fs storage.Storage, err error) {
	fs = &FileStore{
		Root: root,
	}

	info, err := os.Stat(root)
	if err == nil {
		if !info.IsDir() {
			log.Error().Str("root", root).Msg("not a directory")
			err = storage.ErrNotDir
		}
		return
	}

	if errors.Is(err, os.ErrNotExist) {
		err = os.MkdirAll(root, 0o700)
	}

	if err != nil {
		log.Error().Err(err).Msg("internal error when setting up storage")
		err = storage.ErrInternal
	}

	return
}

func (s *FileStore) path(key string) (string, error) {
	if err := storage.ValidKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.Root, key+".json"), nil
}

func (s *FileStore) Get(ctx context.Context, key string) (value []byte, err error) {
	path, err := s.path(key)
	if err != nil {
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = storage.ErrNotExist
		} else {
			log.Error().Err(err).Msg("failed to read file " + path)
			err = storage.ErrInternal
		}
		return
	}
	return storage.DecodeRecord(raw)
}

// Set replaces the value of key. The record is written to a temporary file first and renamed over
// the old one, so a crash never leaves a half written value behind.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	raw, err := storage.EncodeRecord(value)
	if err != nil {
		return err
	}

	file, err := os.CreateTemp(s.Root, key+".*.tmp")
	if err != nil {
		log.Error().Err(err).Msg("failed to create temporary file for " + key)
		return storage.ErrInternal
	}
	defer os.Remove(file.Name())

	if _, err = file.Write(raw); err != nil {
		file.Close()
		log.Error().Err(err).Msg("failed to write " + file.Name())
		return storage.ErrInternal
	}
	if err = file.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close " + file.Name())
		return storage.ErrInternal
	}
	if err = os.Rename(file.Name(), path); err != nil {
		log.Error().Err(err).Msg("failed to replace " + path)
		return storage.ErrInternal
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error().Err(err).Msg("file deletion error")
		return storage.ErrInternal
	}
	return nil
}
