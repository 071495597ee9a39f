package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoundTrip(t *testing.T, store Store) {
	t.Helper()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok, "missing key should report ok=false")

	require.NoError(t, store.Set("alpha", "1"))
	value, ok, err := store.Get("alpha")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	require.NoError(t, store.Set("alpha", "2"))
	value, _, err = store.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "2", value, "set should overwrite")

	require.NoError(t, store.Delete("alpha"))
	_, ok, err = store.Get("alpha")
	require.NoError(t, err)
	assert.False(t, ok, "deleted key should report ok=false")

	assert.NoError(t, store.Delete("never-there"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testRoundTrip(t, store)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	testRoundTrip(t, store)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("zone", "hurricane"))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	value, ok, err := reopened.Get("zone")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hurricane", value)
}

func TestFileStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store, err := NewFileStore(path)
	require.NoError(t, err, "a corrupt file must not be fatal")
	_, ok, err := store.Get("anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "hearth.db"))
	require.NoError(t, err)
	defer store.Close()
	testRoundTrip(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearth.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("chat:trigger_history", "[]"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	value, ok, err := reopened.Get("chat:trigger_history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(BackendMemory, dir)
	require.NoError(t, err)
	_, isMemory := store.(*MemoryStore)
	assert.True(t, isMemory)

	store, err = Open(BackendFile, dir)
	require.NoError(t, err)
	_, isFile := store.(*FileStore)
	assert.True(t, isFile)

	store, err = Open("", dir)
	require.NoError(t, err)
	_, isSQLite := store.(*SQLiteStore)
	assert.True(t, isSQLite)
	store.Close()

	_, err = Open("redis", dir)
	assert.Error(t, err)
}
