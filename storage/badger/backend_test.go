package badger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "store")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	_, err := OpenBackend(tmpFile, false)
	assert.ErrorContains(t, err, "is not a directory")
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	boom := errors.New("boom")
	err = backend.WithTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, backend.WithTransaction(context.Background(), func(ctx context.Context) error {
		return nil
	}))
}

func TestScanPrefix_StopsOnCancel(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		for _, k := range []string{"p:1", "p:2", "q:1"} {
			if err := tx.Set([]byte(k), []byte(k)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true))

	var seen []string
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		assert.Equal(t, 2, countPrefix(tx, []byte("p:")))
		return scanPrefix(context.Background(), tx, []byte("p:"), func(val []byte) error {
			seen = append(seen, string(val))
			return nil
		})
	}, false))
	assert.Equal(t, []string{"p:1", "p:2"}, seen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(ctx, tx, []byte("p:"), func(val []byte) error { return nil })
	}, false)
	assert.ErrorIs(t, err, context.Canceled)
}
