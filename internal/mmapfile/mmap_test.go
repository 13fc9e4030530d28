package mmapfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xDarkicex/bstreefile/internal/mmapfile"
)

func TestCreateAndWriteReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bstree")
	const size = 4096

	mf, err := mmapfile.Create(path, size)
	require.NoError(t, err)
	assert.Equal(t, int64(size), mf.Size())

	data := mf.Bytes()
	require.Len(t, data, size)
	copy(data[:5], []byte("hello"))

	assert.NoError(t, mf.Sync())
	require.NoError(t, mf.Close())

	ro, err := mmapfile.OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	assert.Equal(t, int64(size), ro.Size())
	assert.Equal(t, "hello", string(ro.Bytes()[:5]))
}

func TestOpenReadOnlyRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bstree")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err := mmapfile.OpenReadOnly(path)
	assert.Error(t, err, "expected error mapping an empty file")
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	_, err := mmapfile.OpenReadOnly(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err, "expected error opening a missing file")
}

func TestSyncOnReadOnlyIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.bstree")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	ro, err := mmapfile.OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()
	assert.NoError(t, ro.Sync(), "Sync on read-only mapping should be a no-op")
}
