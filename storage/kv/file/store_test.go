package filekv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/trezcool/scorebook/tests"
)

func TestStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	testutil.KVStore(t, store, "")
}

func TestStore_persists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "ogrenci_users", []byte(`{}`)))

	reopened, err := Open(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "ogrenci_users")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp file left behind")
	assert.Equal(t, "ogrenci_users.json", entries[0].Name())
}

func TestOpen_unwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := Open(filepath.Join(file, "data"))
	assert.Error(t, err)
}
