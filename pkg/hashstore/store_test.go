package hashstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	c := filepath.Join(dir, "c.pdf")
	require.NoError(t, os.WriteFile(a, []byte("invoice body"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("invoice body"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("different body"), 0o644))

	ha, err := HashFile(a)
	require.NoError(t, err)
	hb, err := HashFile(b)
	require.NoError(t, err)
	hc, err := HashFile(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb, "identical content must hash identically")
	assert.NotEqual(t, ha, hc)
	assert.Len(t, ha, 64)
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	ok, err := store.Contains(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Add(ctx, "abc123"))

	ok, err = store.Contains(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, ok)

	// Adding again is a no-op, not an error.
	require.NoError(t, store.Add(ctx, "abc123"))

	ok, err = store.Contains(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "hashes.db"))
	require.NoError(t, err)
	defer store.Close()

	testStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.db")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, "deadbeef"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	ok, err := reopened.Contains(ctx, "deadbeef")
	require.NoError(t, err)
	assert.True(t, ok)
}
