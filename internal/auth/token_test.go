package auth

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStoreRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileTokenStore(fs, "/home/dev/.devark/token")

	assert.False(t, store.Has())
	token, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Store("tok-abc"))
	assert.True(t, store.Has())

	token, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)

	info, err := fs.Stat("/home/dev/.devark/token")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().String())

	require.NoError(t, store.Clear())
	assert.False(t, store.Has())
}

func TestFileTokenStoreClearMissingIsNoop(t *testing.T) {
	store := NewFileTokenStore(afero.NewMemMapFs(), "/tmp/token")
	require.NoError(t, store.Clear())
}

func TestFileTokenStoreOverwrite(t *testing.T) {
	store := NewFileTokenStore(afero.NewMemMapFs(), "/tmp/token")
	require.NoError(t, store.Store("old"))
	require.NoError(t, store.Store("new"))
	token, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "new", token)
}

func TestFileTokenStoreTrimsWhitespace(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(
		fs, "/tmp/token", []byte("tok-abc\n"), 0o600,
	))
	store := NewFileTokenStore(fs, "/tmp/token")
	token, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()
	assert.False(t, store.Has())
	require.NoError(t, store.Store("tok"))
	assert.True(t, store.Has())
	require.NoError(t, store.Clear())
	assert.False(t, store.Has())
}
