package volume

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volman-dev/volman/pkg/models"
)

func makeBackupSet(t *testing.T, workDir, id string, archives ...string) {
	t.Helper()
	dir := filepath.Join(workDir, id)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, name := range archives {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".tar.gz"), []byte("stub archive"), 0644))
	}
}

func TestDiscoverBackupSets(t *testing.T) {
	t.Run("oldest first", func(t *testing.T) {
		workDir := t.TempDir()
		makeBackupSet(t, workDir, "backup_20250102_120000")
		makeBackupSet(t, workDir, "backup_20240101_080000")
		makeBackupSet(t, workDir, "backup_20241231_235959")

		sets, err := DiscoverBackupSets(workDir)
		require.NoError(t, err)

		require.Len(t, sets, 3)
		assert.Equal(t, "backup_20240101_080000", sets[0].ID)
		assert.Equal(t, "backup_20241231_235959", sets[1].ID)
		assert.Equal(t, "backup_20250102_120000", sets[2].ID)
	})

	t.Run("ignores unrelated entries", func(t *testing.T) {
		workDir := t.TempDir()
		makeBackupSet(t, workDir, "backup_20240101_080000")
		require.NoError(t, os.MkdirAll(filepath.Join(workDir, "data"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(workDir, "backup_notes.txt"), []byte("x"), 0644))

		sets, err := DiscoverBackupSets(workDir)
		require.NoError(t, err)
		require.Len(t, sets, 1)
	})

	t.Run("created at parses from the directory name", func(t *testing.T) {
		workDir := t.TempDir()
		makeBackupSet(t, workDir, "backup_20240315_134502")

		sets, err := DiscoverBackupSets(workDir)
		require.NoError(t, err)

		want := time.Date(2024, 3, 15, 13, 45, 2, 0, time.Local)
		assert.Equal(t, want, sets[0].CreatedAt)
	})

	t.Run("archives are keyed by domain", func(t *testing.T) {
		workDir := t.TempDir()
		makeBackupSet(t, workDir, "backup_20240101_080000", "data", "logs")

		sets, err := DiscoverBackupSets(workDir)
		require.NoError(t, err)

		set := sets[0]
		require.Len(t, set.Archives, 2)
		assert.Contains(t, set.Archives, "data")
		assert.Contains(t, set.Archives, "logs")
		assert.Equal(t, int64(len("stub archive")*2), set.SizeBytes)
	})

	t.Run("empty working directory", func(t *testing.T) {
		sets, err := DiscoverBackupSets(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, sets)
	})
}

func TestMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()

	meta := &models.BackupMetadata{
		ID:           "backup_20240101_080000",
		InvocationID: "ckvyjz9k60000l9l3e8q4c3a7",
		CreatedAt:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		Archives: []models.ArchiveEntry{
			{Domain: "data", File: "data.tar.gz", SizeBytes: 1024, FileCount: 3},
		},
	}

	require.NoError(t, WriteMetadata(dir, meta))

	got, err := LoadMetadata(dir)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, meta.ID, got.ID)
	assert.Equal(t, meta.InvocationID, got.InvocationID)
	assert.True(t, meta.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Archives, 1)
	assert.Equal(t, 3, got.Archives[0].FileCount)
}

func TestLoadMetadata(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		meta, err := LoadMetadata(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, meta)
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("{nope"), 0644))

		_, err := LoadMetadata(dir)
		require.Error(t, err)
	})

	t.Run("metadata overrides the name-derived timestamp", func(t *testing.T) {
		workDir := t.TempDir()
		makeBackupSet(t, workDir, "backup_20240101_080000")

		want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, WriteMetadata(filepath.Join(workDir, "backup_20240101_080000"), &models.BackupMetadata{
			ID:        "backup_20240101_080000",
			CreatedAt: want,
		}))

		sets, err := DiscoverBackupSets(workDir)
		require.NoError(t, err)
		require.Len(t, sets, 1)
		assert.True(t, want.Equal(sets[0].CreatedAt))
	})
}

func TestPruneBackupSets(t *testing.T) {
	t.Run("removes the oldest beyond keep", func(t *testing.T) {
		workDir := t.TempDir()
		makeBackupSet(t, workDir, "backup_20240101_080000")
		makeBackupSet(t, workDir, "backup_20240201_080000")
		makeBackupSet(t, workDir, "backup_20240301_080000")
		makeBackupSet(t, workDir, "backup_20240401_080000")

		removed, err := PruneBackupSets(workDir, 2)
		require.NoError(t, err)

		assert.Equal(t, []string{"backup_20240101_080000", "backup_20240201_080000"}, removed)
		assert.NoDirExists(t, filepath.Join(workDir, "backup_20240101_080000"))
		assert.DirExists(t, filepath.Join(workDir, "backup_20240401_080000"))

		sets, err := DiscoverBackupSets(workDir)
		require.NoError(t, err)
		assert.Len(t, sets, 2)
	})

	t.Run("nothing to prune", func(t *testing.T) {
		workDir := t.TempDir()
		makeBackupSet(t, workDir, "backup_20240101_080000")

		removed, err := PruneBackupSets(workDir, 5)
		require.NoError(t, err)
		assert.Empty(t, removed)
		assert.DirExists(t, filepath.Join(workDir, "backup_20240101_080000"))
	})

	t.Run("keep zero removes everything", func(t *testing.T) {
		workDir := t.TempDir()
		makeBackupSet(t, workDir, "backup_20240101_080000")
		makeBackupSet(t, workDir, "backup_20240201_080000")

		removed, err := PruneBackupSets(workDir, 0)
		require.NoError(t, err)
		assert.Len(t, removed, 2)
	})

	t.Run("negative keep is an error", func(t *testing.T) {
		_, err := PruneBackupSets(t.TempDir(), -1)
		require.Error(t, err)
	})
}
