package storage_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignitekv/internal/storage"
)

func TestEnsureDirCreatesKVSSubdirectory(t *testing.T) {
	root := t.TempDir()

	dir, err := storage.EnsureDir(root)
	require.NoError(t, err)
	assert.DirExists(t, dir)

	// Calling it again must be idempotent.
	dir2, err := storage.EnsureDir(root)
	require.NoError(t, err)
	assert.Equal(t, dir, dir2)
}

func TestDiscoverFindsAndSortsSegmentIDs(t *testing.T) {
	root := t.TempDir()
	dir, err := storage.EnsureDir(root)
	require.NoError(t, err)

	for _, id := range []uint64{3, 1, 2} {
		w, err := storage.NewWriter(dir, id)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	ids, err := storage.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, ids)
}

func TestDiscoverRejectsMalformedSegmentName(t *testing.T) {
	root := t.TempDir()
	dir, err := storage.EnsureDir(root)
	require.NoError(t, err)

	w, err := storage.NewWriter(dir, 1)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, os.WriteFile(dir+"/not-a-number.log", []byte("junk"), 0o644))

	_, err = storage.Discover(dir)
	assert.Error(t, err)
}

func TestWriterOffsetAdvancesAndPersistsAcrossReopen(t *testing.T) {
	root := t.TempDir()
	dir, err := storage.EnsureDir(root)
	require.NoError(t, err)

	w, err := storage.NewWriter(dir, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.Offset())

	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, int64(5), w.Offset())
	require.NoError(t, w.Close())

	w2, err := storage.NewWriter(dir, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), w2.Offset())
	require.NoError(t, w2.Close())
}

func TestReaderReadAtIsUnbuffered(t *testing.T) {
	root := t.TempDir()
	dir, err := storage.EnsureDir(root)
	require.NoError(t, err)

	w, err := storage.NewWriter(dir, 1)
	require.NoError(t, err)
	_, err = w.Write([]byte("abcdef"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := storage.NewReader(dir, 1)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 3)
	n, err := r.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "cde", string(buf))
}
