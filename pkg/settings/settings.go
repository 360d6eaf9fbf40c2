// Package settings holds the studio's user preferences and signed-in user.
// A Manager is loaded once from a KV and saves every change immediately.
package settings

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// KV keys.
const (
	ThemeKey = "theme"
	UserKey  = "user"
)

// Theme is the display theme preference.
type Theme string

// Themes. ThemeAuto follows the operating system.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// DefaultTheme is used when no valid theme is stored.
const DefaultTheme = ThemeAuto

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeAuto:
		return true
	}
	return false
}

// User is the signed-in account.
type User struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// Settings errors.
var (
	ErrInvalidTheme = errors.New("invalid theme")
	ErrInvalidUser  = errors.New("invalid user")
)

var validate = validator.New()

// Manager owns the theme preference and the signed-in user.
type Manager struct {
	mu    sync.RWMutex
	kv    types.KV
	theme Theme
	user  *User
	log   *logrus.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *logrus.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// Load reads the stored settings. Missing or unreadable values fall back to
// the defaults with a logged warning; Load does not fail on them.
func Load(kv types.KV, opts ...Option) *Manager {
	m := &Manager{kv: kv, theme: DefaultTheme, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(m)
	}

	var theme Theme
	found, err := kv.Get(ThemeKey, &theme)
	switch {
	case err != nil:
		m.warn(ThemeKey, err, "theme unreadable, using default")
	case found && theme.Valid():
		m.theme = theme
	case found:
		m.warn(ThemeKey, fmt.Errorf("%w: %q", ErrInvalidTheme, theme), "unknown stored theme, using default")
	}

	var user User
	found, err = kv.Get(UserKey, &user)
	switch {
	case err != nil:
		m.warn(UserKey, err, "user unreadable, signed out")
	case found && validate.Struct(user) == nil:
		m.user = &user
	case found:
		m.warn(UserKey, ErrInvalidUser, "stored user incomplete, signed out")
	}
	return m
}

func (m *Manager) warn(key string, err error, msg string) {
	m.log.WithFields(logrus.Fields{"key": key}).WithError(err).Warn(msg)
}

// Theme returns the theme preference.
func (m *Manager) Theme() Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.theme
}

// SetTheme stores a new theme preference.
func (m *Manager) SetTheme(t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.theme = t
	if err := m.kv.Set(ThemeKey, t); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// ResolveDark reports whether the dark palette applies, given whether the
// operating system currently prefers dark.
func (m *Manager) ResolveDark(systemDark bool) bool {
	switch m.Theme() {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	default:
		return systemDark
	}
}

// Login records u as the signed-in user.
func (m *Manager) Login(u User) error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &u
	if err := m.kv.Set(UserKey, u); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// Logout forgets the signed-in user. Logging out while signed out succeeds.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	if err := m.kv.Delete(UserKey); err != nil {
		return fmt.Errorf("removing user: %w", err)
	}
	return nil
}

// User returns the signed-in user.
func (m *Manager) User() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// IsAuthenticated reports whether a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.User()
	return ok
}
