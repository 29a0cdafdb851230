// Package session owns the process-wide authentication state: the bearer token, the current user's
// profile and their persisted copies.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
	"github.com/sidereusnuntius/campus/internal/storage"
	"github.com/sidereusnuntius/campus/internal/validate"
)

var (
	ErrTokenExpired = errors.New("stored token has expired")
	ErrNoToken      = errors.New("backend returned no token")
)

type Auth interface {
	Login(ctx context.Context, email, password string) (domain.AuthResult, error)
	Register(ctx context.Context, in domain.Registration) (string, error)
	VerifyEmail(ctx context.Context, email, otp string) (domain.AuthResult, error)
	Me(ctx context.Context) (domain.User, error)
}

// TokenSink receives the bearer token used by every authenticated call.
type TokenSink interface {
	SetToken(token string)
	ClearToken()
}

type Session struct {
	Token           string
	User            domain.User
	IsAuthenticated bool
}

type Manager struct {
	auth    Auth
	storage storage.Storage
	sink    TokenSink
	now     func() time.Time

	mu      sync.RWMutex
	session Session

	listenersMutex sync.Mutex
	listeners      map[int]func(Session)
	nextListener   int
}

func New(auth Auth, s storage.Storage, sink TokenSink) *Manager {
	return &Manager{
		auth:      auth,
		storage:   s,
		sink:      sink,
		now:       time.Now,
		listeners: map[int]func(Session){},
	}
}

func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Subscribe registers f to receive every session change. The returned function unregisters it.
func (m *Manager) Subscribe(f func(Session)) (unsubscribe func()) {
	m.listenersMutex.Lock()
	defer m.listenersMutex.Unlock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = f
	return func() {
		m.listenersMutex.Lock()
		defer m.listenersMutex.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) set(s Session) {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()

	m.listenersMutex.Lock()
	fs := make([]func(Session), 0, len(m.listeners))
	for _, f := range m.listeners {
		fs = append(fs, f)
	}
	m.listenersMutex.Unlock()

	for _, f := range fs {
		f(s)
	}
}

// Hydrate restores the session persisted by a previous run. The stored token is checked locally for
// expiry, then confirmed by fetching the profile. On any failure the persisted state is cleared and
// the session stays logged out. A missing token is not an error.
func (m *Manager) Hydrate(ctx context.Context) error {
	raw, err := m.storage.Get(ctx, storage.KeyToken)
	if errors.Is(err, storage.ErrNotExist) {
		m.set(Session{})
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to read stored token")
		return errors.Join(err, m.Logout(ctx))
	}

	token := string(raw)
	if expired(token, m.now()) {
		log.Info().Msg("stored token has expired")
		return errors.Join(ErrTokenExpired, m.Logout(ctx))
	}

	m.sink.SetToken(token)
	user, err := m.auth.Me(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to restore session")
		return errors.Join(err, m.Logout(ctx))
	}

	if err = storage.SetJSON(ctx, m.storage, storage.KeyUser, user); err != nil {
		log.Error().Err(err).Msg("failed to persist profile")
	}
	m.set(Session{Token: token, User: user, IsAuthenticated: true})
	return nil
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := validate.LoginForm(email, password); err != nil {
		return client.Validation(err)
	}
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return m.establish(ctx, res)
}

// Register submits the sign up form and returns the backend's instructions. The account stays
// unauthenticated until its email is verified.
func (m *Manager) Register(ctx context.Context, r domain.Registration) (string, error) {
	if err := validate.SignUpForm(r); err != nil {
		return "", client.Validation(err)
	}
	return m.auth.Register(ctx, r)
}

// VerifyOTP confirms the email of a new account with the code sent to it, logging the user in.
func (m *Manager) VerifyOTP(ctx context.Context, email, otp string) error {
	if err := errors.Join(validate.Email(email), validate.OTP(otp)); err != nil {
		return client.Validation(err)
	}
	res, err := m.auth.VerifyEmail(ctx, email, otp)
	if err != nil {
		return err
	}
	return m.establish(ctx, res)
}

func (m *Manager) establish(ctx context.Context, res domain.AuthResult) error {
	if res.Token == "" {
		return &client.Error{Kind: client.ErrRemote, Message: "login failed", Err: ErrNoToken}
	}
	if err := m.storage.Set(ctx, storage.KeyToken, []byte(res.Token)); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := storage.SetJSON(ctx, m.storage, storage.KeyUser, res.User); err != nil {
		log.Error().Err(err).Msg("failed to persist profile")
	}
	m.sink.SetToken(res.Token)
	m.set(Session{Token: res.Token, User: res.User, IsAuthenticated: true})
	log.Info().Str("user", res.User.GetID()).Msg("logged in")
	return nil
}

// Logout forgets the session, both in memory and on disk. It always leaves the session logged out;
// the returned error only reports what could not be removed from storage.
func (m *Manager) Logout(ctx context.Context) error {
	m.sink.ClearToken()
	err := errors.Join(
		m.storage.Delete(ctx, storage.KeyToken),
		m.storage.Delete(ctx, storage.KeyUser),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to clear persisted session")
	}
	m.set(Session{})
	return err
}

// Refresh fetches the profile again. An expired session logs the user out.
func (m *Manager) Refresh(ctx context.Context) error {
	cur := m.Current()
	if !cur.IsAuthenticated {
		return nil
	}
	user, err := m.auth.Me(ctx)
	if errors.Is(err, client.ErrSessionExpired) {
		return errors.Join(err, m.Logout(ctx))
	}
	if err != nil {
		return err
	}
	if err = storage.SetJSON(ctx, m.storage, storage.KeyUser, user); err != nil {
		log.Error().Err(err).Msg("failed to persist profile")
	}
	cur.User = user
	m.set(cur)
	return nil
}

// Expired is meant to be registered as the client's session expiry hook.
func (m *Manager) Expired() {
	log.Info().Msg("session expired")
	m.Logout(context.Background())
}

// expired reports whether token is a JWT whose exp claim has passed. The signature is not checked;
// the backend stays the authority. Tokens that are not JWTs are never reported as expired.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
