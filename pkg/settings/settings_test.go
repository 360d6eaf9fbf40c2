package settings

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/studiobook/internal/memory"
	"github.com/mesh-intelligence/studiobook/pkg/types"
)

func demoUser() User {
	return User{ID: "1", Name: "Demo User", Email: "demo@example.com"}
}

func TestLoadDefaults(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := Load(memory.NewAttached(), WithLogger(logger))

	assert.Equal(t, ThemeAuto, m.Theme())
	assert.False(t, m.IsAuthenticated())
	_, ok := m.User()
	assert.False(t, ok)
	assert.Empty(t, hook.AllEntries())
}

func TestThemeRoundTrip(t *testing.T) {
	kv := memory.NewAttached()
	m := Load(kv)
	require.NoError(t, m.SetTheme(ThemeDark))
	assert.Equal(t, ThemeDark, m.Theme())

	assert.Equal(t, ThemeDark, Load(kv).Theme())
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	kv := memory.NewAttached()
	m := Load(kv)
	err := m.SetTheme("sepia")
	assert.ErrorIs(t, err, ErrInvalidTheme)
	assert.Equal(t, ThemeAuto, m.Theme())

	keys, _ := kv.Keys("")
	assert.Empty(t, keys)
}

func TestResolveDark(t *testing.T) {
	tests := []struct {
		theme      Theme
		systemDark bool
		want       bool
	}{
		{ThemeLight, true, false},
		{ThemeLight, false, false},
		{ThemeDark, false, true},
		{ThemeDark, true, true},
		{ThemeAuto, true, true},
		{ThemeAuto, false, false},
	}
	for _, tt := range tests {
		m := Load(memory.NewAttached())
		require.NoError(t, m.SetTheme(tt.theme))
		assert.Equal(t, tt.want, m.ResolveDark(tt.systemDark), "%s with system dark=%v", tt.theme, tt.systemDark)
	}
}

func TestUnknownStoredThemeFallsBack(t *testing.T) {
	kv := memory.NewAttached()
	require.NoError(t, kv.Set(ThemeKey, "sepia"))

	logger, hook := test.NewNullLogger()
	m := Load(kv, WithLogger(logger))
	assert.Equal(t, ThemeAuto, m.Theme())
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, ThemeKey, hook.LastEntry().Data["key"])
}

func TestCorruptStoredUserSignsOut(t *testing.T) {
	kv := memory.NewAttached()
	require.NoError(t, kv.SetRaw(UserKey, []byte(`{"id":`)))

	logger, hook := test.NewNullLogger()
	m := Load(kv, WithLogger(logger))
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, UserKey, hook.LastEntry().Data["key"])
}

func TestLoginLogout(t *testing.T) {
	kv := memory.NewAttached()
	m := Load(kv)

	require.NoError(t, m.Login(demoUser()))
	assert.True(t, m.IsAuthenticated())
	u, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, demoUser(), u)

	reloaded := Load(kv)
	assert.True(t, reloaded.IsAuthenticated())

	require.NoError(t, m.Logout())
	assert.False(t, m.IsAuthenticated())
	found, err := kv.Get(UserKey, &User{})
	require.NoError(t, err)
	assert.False(t, found, "logout removes the stored user")

	require.NoError(t, m.Logout(), "logout is idempotent")
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name string
		user User
	}{
		{"missing id", User{Name: "A", Email: "a@example.com"}},
		{"missing name", User{ID: "1", Email: "a@example.com"}},
		{"bad email", User{ID: "1", Name: "A", Email: "nope"}},
		{"bad avatar", User{ID: "1", Name: "A", Email: "a@example.com", Avatar: "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Load(memory.NewAttached())
			assert.ErrorIs(t, m.Login(tt.user), ErrInvalidUser)
			assert.False(t, m.IsAuthenticated())
		})
	}
}

func TestSaveFailureSurfaced(t *testing.T) {
	m := Load(memory.NewBackend())
	assert.ErrorIs(t, m.SetTheme(ThemeLight), types.ErrDetached)
	assert.Equal(t, ThemeLight, m.Theme(), "preference kept for this session")
}
