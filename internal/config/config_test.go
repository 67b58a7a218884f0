package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	t.Run("missing file yields built-in registry", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, DefaultPrefix, cfg.Registry.Prefix)
		require.Len(t, cfg.Domains, len(DefaultKeys))
		for i, key := range DefaultKeys {
			assert.Equal(t, key, cfg.Domains[i].Key)
			assert.Equal(t, key, cfg.Domains[i].Path)
			assert.Equal(t, "volman_"+key, cfg.Domains[i].Volume)
		}
	})

	t.Run("registry order is stable", func(t *testing.T) {
		expected := []string{"data", "chunks", "merged_files", "logs", "cache", "uploads", "models", "temp"}
		assert.Equal(t, expected, DefaultKeys)
	})

	t.Run("backend defaults are filled", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, "volman-backend", cfg.Backend.ContainerName)
		assert.Equal(t, 8000, cfg.Backend.Port)
		assert.Equal(t, 8000, cfg.Backend.HostPort)
		assert.Equal(t, "bind", cfg.Backend.Mounts)
		assert.Equal(t, "/app", cfg.Backend.MountRoot)
		assert.Equal(t, "unless-stopped", cfg.Backend.RestartPolicy)
	})
}

func TestLoad_File(t *testing.T) {
	t.Run("custom prefix renames volumes", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `
[registry]
prefix = "myapp"
`)

		cfg, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, "myapp", cfg.Registry.Prefix)
		assert.Equal(t, "myapp_data", cfg.Domains[0].Volume)
	})

	t.Run("explicit domains replace the registry", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `
[[domains]]
key = "media"
path = "storage/media"

[[domains]]
key = "thumbs"
`)

		cfg, err := Load(dir)
		require.NoError(t, err)

		require.Len(t, cfg.Domains, 2)
		assert.Equal(t, "storage/media", cfg.Domains[0].Path)
		assert.Equal(t, "volman_media", cfg.Domains[0].Volume)
		assert.Equal(t, "thumbs", cfg.Domains[1].Path)
	})

	t.Run("explicit volume name wins over prefix", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `
[[domains]]
key = "data"
volume = "legacy_data_vol"
`)

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "legacy_data_vol", cfg.Domains[0].Volume)
	})

	t.Run("backend settings parse", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `
[backend]
image = "ghcr.io/acme/api:latest"
port = 9000
mounts = "volume"

[backend.env]
LOG_LEVEL = "debug"
`)

		cfg, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, "ghcr.io/acme/api:latest", cfg.Backend.Image)
		assert.Equal(t, 9000, cfg.Backend.Port)
		assert.Equal(t, 9000, cfg.Backend.HostPort, "host port defaults to the container port")
		assert.Equal(t, "volume", cfg.Backend.Mounts)
		assert.Equal(t, "debug", cfg.Backend.Env["LOG_LEVEL"])
	})

	t.Run("malformed toml is an error", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `[registry`)

		_, err := Load(dir)
		require.Error(t, err)
	})
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"uppercase key", "[[domains]]\nkey = \"Data\"\n"},
		{"key with dash", "[[domains]]\nkey = \"merged-files\"\n"},
		{"leading underscore", "[[domains]]\nkey = \"_data\"\n"},
		{"duplicate keys", "[[domains]]\nkey = \"data\"\n\n[[domains]]\nkey = \"data\"\n"},
		{"absolute path", "[[domains]]\nkey = \"data\"\npath = \"/var/data\"\n"},
		{"escaping path", "[[domains]]\nkey = \"data\"\npath = \"../data\"\n"},
		{"dot path", "[[domains]]\nkey = \"data\"\npath = \".\"\n"},
		{"invalid prefix", "[registry]\nprefix = \"My App\"\n"},
		{"bad mount mode", "[backend]\nmounts = \"overlay\"\n"},
		{"port out of range", "[backend]\nport = 70000\n"},
		{"relative mount root", "[backend]\nmount_root = \"app\"\n"},
		{"unknown restart policy", "[backend]\nrestart_policy = \"whenever\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tc.content)

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("preserves declaration order", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `
[[domains]]
key = "zeta"

[[domains]]
key = "alpha"
`)

		cfg, err := Load(dir)
		require.NoError(t, err)

		domains := Resolve(cfg)
		require.Len(t, domains, 2)
		assert.Equal(t, "zeta", domains[0].Key)
		assert.Equal(t, "alpha", domains[1].Key)
	})

	t.Run("cleans local paths", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `
[[domains]]
key = "media"
path = "storage//media/"
`)

		cfg, err := Load(dir)
		require.NoError(t, err)

		domains := Resolve(cfg)
		assert.Equal(t, filepath.Join("storage", "media"), domains[0].LocalPath)
	})
}
