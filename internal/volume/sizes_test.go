package volume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSize(t *testing.T) {
	t.Run("sums files recursively", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a"), "12345")
		writeFile(t, filepath.Join(dir, "sub", "b"), "1234567890")

		size, err := DirSize(dir)
		require.NoError(t, err)
		assert.Equal(t, int64(15), size)
	})

	t.Run("empty directory is zero", func(t *testing.T) {
		size, err := DirSize(t.TempDir())
		require.NoError(t, err)
		assert.Zero(t, size)
	})

	t.Run("missing directory is an error", func(t *testing.T) {
		_, err := DirSize(filepath.Join(t.TempDir(), "absent"))
		require.Error(t, err)
	})
}

func TestDirEmpty(t *testing.T) {
	t.Run("fresh directory is empty", func(t *testing.T) {
		empty, err := DirEmpty(t.TempDir())
		require.NoError(t, err)
		assert.True(t, empty)
	})

	t.Run("directory with a file is not", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "x"), "")

		empty, err := DirEmpty(dir)
		require.NoError(t, err)
		assert.False(t, empty)
	})

	t.Run("directory with only a subdirectory is not", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))

		empty, err := DirEmpty(dir)
		require.NoError(t, err)
		assert.False(t, empty)
	})
}
