package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("imports/ctx-1/outcome.csv", []byte("title,error\n"))
	require.NoError(t, err)
	assert.Equal(t, "imports/ctx-1/outcome.csv", rel)

	file, err := store.Open(rel)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "title,error\n", string(content))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../secret", "imports/../../secret", "/etc/passwd"} {
		_, err := store.Save(name, []byte("x"))
		assert.Error(t, err, name)
		_, err = store.Open(name)
		assert.Error(t, err, name)
	}
}

func TestLocalStorageCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old.pdf", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("new.pdf", []byte("new"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.pdf"), past, past))

	removed, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.pdf"}, removed)
	_, err = os.Stat(filepath.Join(dir, "new.pdf"))
	assert.NoError(t, err)
}
