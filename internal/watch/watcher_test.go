package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/document"
)

func waitChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-changes:
		require.True(t, ok, "change channel closed")
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change")
		return Change{}
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("first line\n"), 0o644))

	w, err := New(path, Config{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	changes, err := w.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	doc := document.FromString("first line\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("first line\nsecond line\n"), 0o644))

	c := waitChange(t, changes)
	require.NoError(t, c.Err)
	assert.Equal(t, w.Path(), c.Path)

	_, err = Apply(doc, c.Content)
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line\n", doc.Text().String())
}

func TestWatcherReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w, err := New(path, Config{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	changes, err := w.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.Remove(path))
	c := waitChange(t, changes)
	assert.ErrorIs(t, c.Err, os.ErrNotExist)
}

func TestStopClosesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	w, err := New(path, Config{})
	require.NoError(t, err)
	changes, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	_, ok := <-changes
	assert.False(t, ok)
}
