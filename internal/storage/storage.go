// Package storage is the device-local key-value state: the session token, the cached profile and
// the theme preference.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotDir     = errors.New("given root is not a directory")
	ErrInternal   = errors.New("internal error")
	ErrNotExist   = errors.New("key does not exist")
	ErrCorrupt    = errors.New("stored value is corrupt")
	ErrInvalidKey = errors.New("invalid key")
)

// The keys the application persists.
const (
	KeyToken     = "auth_token"
	KeyUser      = "auth_user"
	KeyThemeMode = "theme_mode"
)

// Version tags every stored value. Values written by a newer version are reported as corrupt.
const Version = 1

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

var keyPattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidKey rejects keys that are not lowercase snake case identifiers, so that backends may use
// them as file names.
func ValidKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Record is the envelope of a value in backends that have no column for the version.
type Record struct {
	Version int    `json:"version"`
	Value   []byte `json:"value"`
}

func EncodeRecord(value []byte) ([]byte, error) {
	return json.Marshal(Record{Version: Version, Value: value})
}

func DecodeRecord(raw []byte) ([]byte, error) {
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	if err := CheckVersion(r.Version); err != nil {
		return nil, err
	}
	return r.Value, nil
}

func CheckVersion(v int) error {
	if v < 1 || v > Version {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}
	return nil
}

// GetJSON reads key and decodes it into out.
func GetJSON(ctx context.Context, s Storage, key string, out any) error {
	b, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, b)
}
