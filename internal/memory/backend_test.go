package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

func TestBackendLifecycle(t *testing.T) {
	b := NewBackend()

	var v string
	_, err := b.Get("k", &v)
	assert.ErrorIs(t, err, types.ErrDetached)

	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	assert.ErrorIs(t, b.Attach(types.Config{Backend: types.BackendMemory}), types.ErrAlreadyAttached)

	require.NoError(t, b.Set("k", "v"))
	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())

	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	found, err := b.Get("k", &v)
	require.NoError(t, err)
	assert.False(t, found, "values do not survive detach")
}

func TestValuesAreCopies(t *testing.T) {
	b := NewAttached()
	in := map[string]int{"a": 1}
	require.NoError(t, b.Set("m", in))
	in["a"] = 2

	var out map[string]int
	found, err := b.Get("m", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, out["a"])
}

func TestCorruptAndKeys(t *testing.T) {
	b := NewAttached()
	require.NoError(t, b.SetRaw("inventory", []byte("{not json")))
	require.NoError(t, b.Set("theme", "auto"))
	require.NoError(t, b.Set("submissions/intake", []int{}))

	var items []any
	_, err := b.Get("inventory", &items)
	assert.ErrorIs(t, err, types.ErrCorruptValue)

	keys, err := b.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory", "submissions/intake", "theme"}, keys)

	keys, err = b.Keys("sub")
	require.NoError(t, err)
	assert.Equal(t, []string{"submissions/intake"}, keys)

	require.NoError(t, b.Delete("theme"))
	require.NoError(t, b.Delete("theme"))
	_, err = b.Keys("")
	require.NoError(t, err)
}
