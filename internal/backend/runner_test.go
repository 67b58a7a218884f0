package backend

import (
	"path/filepath"
	"testing"

	"github.com/docker/docker/api/types/mount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volman-dev/volman/pkg/models"
)

func testDomains() []models.Domain {
	return []models.Domain{
		{Key: "data", LocalPath: "data", VolumeName: "volman_data"},
		{Key: "uploads", LocalPath: filepath.Join("storage", "uploads"), VolumeName: "volman_uploads"},
	}
}

func TestBuildMounts(t *testing.T) {
	t.Run("bind mode mounts local directories", func(t *testing.T) {
		cfg := models.BackendConfig{Mounts: "bind", MountRoot: "/app"}
		workDir := t.TempDir()

		mounts, err := BuildMounts(cfg, testDomains(), workDir)
		require.NoError(t, err)
		require.Len(t, mounts, 2)

		assert.Equal(t, mount.TypeBind, mounts[0].Type)
		assert.Equal(t, filepath.Join(workDir, "data"), mounts[0].Source)
		assert.Equal(t, "/app/data", mounts[0].Target)

		assert.Equal(t, filepath.Join(workDir, "storage", "uploads"), mounts[1].Source)
		assert.Equal(t, "/app/storage/uploads", mounts[1].Target)
	})

	t.Run("volume mode mounts named volumes", func(t *testing.T) {
		cfg := models.BackendConfig{Mounts: "volume", MountRoot: "/srv"}

		mounts, err := BuildMounts(cfg, testDomains(), t.TempDir())
		require.NoError(t, err)
		require.Len(t, mounts, 2)

		assert.Equal(t, mount.TypeVolume, mounts[0].Type)
		assert.Equal(t, "volman_data", mounts[0].Source)
		assert.Equal(t, "/srv/data", mounts[0].Target)
		assert.Equal(t, "volman_uploads", mounts[1].Source)
	})

	t.Run("registry order is preserved", func(t *testing.T) {
		cfg := models.BackendConfig{Mounts: "volume", MountRoot: "/app"}

		mounts, err := BuildMounts(cfg, testDomains(), t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "volman_data", mounts[0].Source)
		assert.Equal(t, "volman_uploads", mounts[1].Source)
	})

	t.Run("unknown mode is an error", func(t *testing.T) {
		cfg := models.BackendConfig{Mounts: "overlay", MountRoot: "/app"}

		_, err := BuildMounts(cfg, testDomains(), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overlay")
	})
}

func TestBuildEnv(t *testing.T) {
	t.Run("flattens and sorts", func(t *testing.T) {
		env := BuildEnv(map[string]string{
			"ZED":       "last",
			"LOG_LEVEL": "debug",
			"API_KEY":   "secret",
		})

		assert.Equal(t, []string{"API_KEY=secret", "LOG_LEVEL=debug", "ZED=last"}, env)
	})

	t.Run("nil map yields empty slice", func(t *testing.T) {
		assert.Empty(t, BuildEnv(nil))
	})
}
