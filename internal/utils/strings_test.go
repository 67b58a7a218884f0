package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc123def456", TruncateID("abc123def456ghi789", 12))
	assert.Equal(t, "short", TruncateID("short", 12))
	assert.Equal(t, "", TruncateID("whatever", 0))
	assert.Equal(t, "", TruncateID("whatever", -3))
}

func TestIsValidKey(t *testing.T) {
	valid := []string{"data", "merged_files", "cache2", "a"}
	for _, name := range valid {
		assert.True(t, IsValidKey(name), name)
	}

	invalid := []string{"", "Data", "my-key", "_data", "data_", "has space", "dot.key"}
	for _, name := range invalid {
		assert.False(t, IsValidKey(name), name)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	t.Run("writes new file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")

		require.NoError(t, AtomicWriteFile(path, []byte("hello"), 0644))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("replaces existing content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		require.NoError(t, AtomicWriteFile(path, []byte("new"), 0644))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, AtomicWriteFile(filepath.Join(dir, "out.json"), []byte("x"), 0644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "out.json", entries[0].Name())
	})
}
