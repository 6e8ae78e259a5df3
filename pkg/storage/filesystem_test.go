package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := store.Save("ranking/3/snap.csv", strings.NewReader("rank,creator\n"))
	require.NoError(t, err)
	require.Equal(t, int64(13), n)

	file, err := store.Open("ranking/3/snap.csv")
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, file.Close())
	require.NoError(t, err)
	require.Equal(t, "rank,creator\n", string(data))

	require.NoError(t, store.Delete("ranking/3/snap.csv"))
	require.NoError(t, store.Delete("ranking/3/snap.csv"))
	_, err = store.Open("ranking/3/snap.csv")
	require.Error(t, err)
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.csv", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrOutsideBase)

	_, err = store.Open("/etc/passwd")
	require.ErrorIs(t, err, ErrOutsideBase)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("videos/old.csv", strings.NewReader("old"))
	require.NoError(t, err)
	_, err = store.Save("videos/new.csv", strings.NewReader("new"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "videos", "old.csv"), past, past))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"videos/old.csv"}, deleted)

	_, err = os.Stat(filepath.Join(dir, "videos", "new.csv"))
	require.NoError(t, err)
}
