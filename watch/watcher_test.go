package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func startWatcher(t *testing.T, path string, opts ...Option) <-chan string {
	t.Helper()
	w, err := NewWatcher(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(func(path string) {
		changed <- path
	}))
	time.Sleep(50 * time.Millisecond)
	return changed
}

func TestWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "concepts.yaml")
	require.NoError(t, os.WriteFile(file, []byte("concepts: []\n"), 0o644))

	changed := startWatcher(t, file, WithDebounce(10*time.Millisecond))
	require.NoError(t, os.WriteFile(file, []byte("concepts: []\n# edited\n"), 0o644))

	path, ok := waitForCallback(changed, 2*time.Second)
	require.True(t, ok, "expected callback for file change")
	assert.Equal(t, file, path)
}

func TestWatcher_DetectsCreate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "concepts.yaml")

	changed := startWatcher(t, file, WithDebounce(10*time.Millisecond))
	require.NoError(t, os.WriteFile(file, []byte("concepts: []\n"), 0o644))

	path, ok := waitForCallback(changed, 2*time.Second)
	require.True(t, ok, "expected callback for new file")
	assert.Equal(t, file, path)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "concepts.yaml")
	require.NoError(t, os.WriteFile(file, []byte("concepts: []\n"), 0o644))

	changed := startWatcher(t, file, WithDebounce(10*time.Millisecond))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))

	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "changes to other files must not fire")
}

func TestWatcher_DebounceCollapsesBursts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "concepts.yaml")
	require.NoError(t, os.WriteFile(file, []byte("v0"), 0o644))

	changed := startWatcher(t, file, WithDebounce(200*time.Millisecond))
	for i := range 5 {
		require.NoError(t, os.WriteFile(file, []byte{byte('a' + i)}, 0o644))
	}

	_, ok := waitForCallback(changed, 2*time.Second)
	require.True(t, ok)
	_, again := waitForCallback(changed, 400*time.Millisecond)
	assert.False(t, again, "a burst of writes fires once")
}

func TestWatcher_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "concepts.yaml"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(w.Path()))

	noop := func(string) {}
	require.NoError(t, w.Watch(noop))
	assert.ErrorIs(t, w.Watch(noop), ErrAlreadyWatching)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop(), "stop is idempotent")
	assert.ErrorIs(t, w.Watch(noop), ErrStopped)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "concepts.yaml"))
	require.NoError(t, err)
	assert.Error(t, w.Watch(func(string) {}))
	assert.NoError(t, w.Stop())
}
