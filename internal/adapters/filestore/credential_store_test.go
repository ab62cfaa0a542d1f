package filestore

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/positions-ui/internal/ports"
)

func TestCredentialStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credential")
	store, err := NewCredentialStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	_, err = store.Get(ctx)
	require.ErrorIs(t, err, ports.ErrNoCredential)

	require.NoError(t, store.Save(ctx, "T1"))
	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", got)

	require.NoError(t, store.Save(ctx, "T2"))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", got)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx)
	require.ErrorIs(t, err, ports.ErrNoCredential)

	// Clearing twice is fine.
	require.NoError(t, store.Clear(ctx))
}

func TestCredentialStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	path := filepath.Join(t.TempDir(), "credential")
	store, err := NewCredentialStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCredentialStore_RejectsEmptyToken(t *testing.T) {
	store, err := NewCredentialStore(filepath.Join(t.TempDir(), "credential"))
	require.NoError(t, err)
	assert.Error(t, store.Save(context.Background(), ""))
}

func TestCredentialStore_BlankFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))
	store, err := NewCredentialStore(path)
	require.NoError(t, err)

	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoCredential)
}
