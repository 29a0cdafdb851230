// Package theme resolves the visual theme from the user's preference and the OS appearance.
package theme

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/storage"
)

// Mode is the user's preference.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

// Name identifies a palette. The OS appearance is reported with the same values.
type Name string

const (
	Light Name = "light"
	Dark  Name = "dark"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeLight, ModeDark, ModeSystem:
		return m, nil
	}
	return ModeSystem, fmt.Errorf("unknown theme mode %q", s)
}

type Theme struct {
	Name   Name
	Colors map[string]string
}

var palettes = map[Name]map[string]string{
	Light: {
		"background":    "#ffffff",
		"surface":       "#f4f5f7",
		"text":          "#111827",
		"textSecondary": "#6b7280",
		"primary":       "#4f46e5",
		"border":        "#e5e7eb",
		"error":         "#dc2626",
		"success":       "#16a34a",
	},
	Dark: {
		"background":    "#0f172a",
		"surface":       "#1e293b",
		"text":          "#f1f5f9",
		"textSecondary": "#94a3b8",
		"primary":       "#818cf8",
		"border":        "#334155",
		"error":         "#f87171",
		"success":       "#4ade80",
	},
}

// Resolve picks the palette for mode, following appearance when mode is system.
func Resolve(mode Mode, appearance Name) Theme {
	name := Light
	switch mode {
	case ModeDark:
		name = Dark
	case ModeSystem:
		if appearance == Dark {
			name = Dark
		}
	}
	return Theme{Name: name, Colors: maps.Clone(palettes[name])}
}

type Manager struct {
	storage storage.Storage

	mu         sync.RWMutex
	mode       Mode
	appearance Name

	listenersMutex sync.Mutex
	listeners      map[int]func(Theme)
	nextListener   int
}

// New returns a manager in system mode. appearance is the OS appearance at start.
func New(s storage.Storage, appearance Name) *Manager {
	return &Manager{
		storage:    s,
		mode:       ModeSystem,
		appearance: appearance,
		listeners:  map[int]func(Theme){},
	}
}

// Load reads the persisted preference. A missing or unreadable one leaves the manager in system
// mode.
func (m *Manager) Load(ctx context.Context) error {
	raw, err := m.storage.Get(ctx, storage.KeyThemeMode)
	if errors.Is(err, storage.ErrNotExist) {
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to read theme preference")
		return err
	}

	mode, err := ParseMode(string(raw))
	if err != nil {
		log.Warn().Err(err).Msg("ignoring stored theme preference")
		mode = ModeSystem
	}
	m.update(func() { m.mode = mode })
	return nil
}

// SetMode persists mode and applies it. The in-memory mode changes even if persisting fails.
func (m *Manager) SetMode(ctx context.Context, mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	m.update(func() { m.mode = mode })
	if err := m.storage.Set(ctx, storage.KeyThemeMode, []byte(mode)); err != nil {
		log.Error().Err(err).Msg("failed to persist theme preference")
		return err
	}
	return nil
}

// SetAppearance is called when the OS switches between light and dark.
func (m *Manager) SetAppearance(a Name) {
	m.update(func() { m.appearance = a })
}

func (m *Manager) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

func (m *Manager) Current() Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Resolve(m.mode, m.appearance)
}

// Subscribe registers f to receive the theme after every change. The returned function unregisters
// it.
func (m *Manager) Subscribe(f func(Theme)) (unsubscribe func()) {
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

func (m *Manager) update(f func()) {
	m.mu.Lock()
	before := Resolve(m.mode, m.appearance).Name
	f()
	after := Resolve(m.mode, m.appearance)
	m.mu.Unlock()

	if before == after.Name {
		return
	}

	m.listenersMutex.Lock()
	fs := make([]func(Theme), 0, len(m.listeners))
	for _, l := range m.listeners {
		fs = append(fs, l)
	}
	m.listenersMutex.Unlock()

	for _, l := range fs {
		l(after)
	}
}
