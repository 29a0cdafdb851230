package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

// KeySalt holds the salt the sealing key is derived with. It is stored in the clear.
const KeySalt = "seal_salt"

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	saltLen       = 16
	nonceLen      = 24
)

// Sealed encrypts values before handing them to another Storage.
type Sealed struct {
	inner Storage
	key   [32]byte
}

// NewSealed derives the sealing key from secret, creating the salt on first use.
func NewSealed(ctx context.Context, inner Storage, secret string) (*Sealed, error) {
	if secret == "" {
		return nil, errors.New("empty storage secret")
	}

	salt, err := inner.Get(ctx, KeySalt)
	if errors.Is(err, ErrNotExist) {
		salt = make([]byte, saltLen)
		if _, err = rand.Read(salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		err = inner.Set(ctx, KeySalt, salt)
	}
	if err != nil {
		return nil, err
	}
	if len(salt) != saltLen {
		return nil, fmt.Errorf("%w: salt of %d bytes", ErrCorrupt, len(salt))
	}

	s := &Sealed{inner: inner}
	copy(s.key[:], argon2.IDKey([]byte(secret), salt, argon2Time, argon2Memory, argon2Threads, 32))
	return s, nil
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	box, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(box) < nonceLen+secretbox.Overhead {
		return nil, fmt.Errorf("%w: sealed value too short", ErrCorrupt)
	}

	var nonce [nonceLen]byte
	copy(nonce[:], box[:nonceLen])
	value, ok := secretbox.Open(nil, box[nonceLen:], &nonce, &s.key)
	if !ok {
		log.Error().Str("key", key).Msg("failed to open sealed value")
		return nil, fmt.Errorf("%w: cannot open %s", ErrCorrupt, key)
	}
	return value, nil
}

func (s *Sealed) Set(ctx context.Context, key string, value []byte) error {
	if key == KeySalt {
		return fmt.Errorf("%w: %s is reserved", ErrInvalidKey, key)
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("%w: %s", ErrInternal, err)
	}
	return s.inner.Set(ctx, key, secretbox.Seal(nonce[:], value, &nonce, &s.key))
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
