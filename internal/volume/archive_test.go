package volume

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCreateArchive(t *testing.T) {
	t.Run("counts regular files only", func(t *testing.T) {
		workDir := t.TempDir()
		writeFile(t, filepath.Join(workDir, "data", "a.txt"), "alpha")
		writeFile(t, filepath.Join(workDir, "data", "sub", "b.txt"), "beta")
		require.NoError(t, os.MkdirAll(filepath.Join(workDir, "data", "empty"), 0755))

		count, err := CreateArchive(workDir, "data", filepath.Join(workDir, "data.tar.gz"))
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("entries are rooted at the domain directory", func(t *testing.T) {
		workDir := t.TempDir()
		writeFile(t, filepath.Join(workDir, "logs", "app.log"), "line")

		dest := filepath.Join(workDir, "logs.tar.gz")
		_, err := CreateArchive(workDir, "logs", dest)
		require.NoError(t, err)

		names := archiveNames(t, dest)
		assert.Contains(t, names, "logs")
		assert.Contains(t, names, "logs/app.log")
	})

	t.Run("missing directory is an error", func(t *testing.T) {
		workDir := t.TempDir()

		_, err := CreateArchive(workDir, "nope", filepath.Join(workDir, "out.tar.gz"))
		require.Error(t, err)
		assert.NoFileExists(t, filepath.Join(workDir, "out.tar.gz"))
	})
}

func TestArchiveRoundTrip(t *testing.T) {
	t.Run("content survives byte for byte", func(t *testing.T) {
		srcRoot := t.TempDir()
		writeFile(t, filepath.Join(srcRoot, "data", "plain.txt"), "hello world")
		writeFile(t, filepath.Join(srcRoot, "data", "nested", "deep", "file.bin"), "\x00\x01\x02binary\xff")

		archive := filepath.Join(t.TempDir(), "data.tar.gz")
		_, err := CreateArchive(srcRoot, "data", archive)
		require.NoError(t, err)

		destRoot := t.TempDir()
		require.NoError(t, ExtractArchive(archive, destRoot))

		got, err := os.ReadFile(filepath.Join(destRoot, "data", "plain.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(got))

		got, err = os.ReadFile(filepath.Join(destRoot, "data", "nested", "deep", "file.bin"))
		require.NoError(t, err)
		assert.Equal(t, "\x00\x01\x02binary\xff", string(got))
	})

	t.Run("file modes survive", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("file modes are not meaningful on windows")
		}

		srcRoot := t.TempDir()
		script := filepath.Join(srcRoot, "data", "run.sh")
		writeFile(t, script, "#!/bin/sh\n")
		require.NoError(t, os.Chmod(script, 0755))

		archive := filepath.Join(t.TempDir(), "data.tar.gz")
		_, err := CreateArchive(srcRoot, "data", archive)
		require.NoError(t, err)

		destRoot := t.TempDir()
		require.NoError(t, ExtractArchive(archive, destRoot))

		info, err := os.Stat(filepath.Join(destRoot, "data", "run.sh"))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0100, "owner exec bit should survive")
	})

	t.Run("symlinks survive", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlinks need privileges on windows")
		}

		srcRoot := t.TempDir()
		writeFile(t, filepath.Join(srcRoot, "data", "target.txt"), "x")
		require.NoError(t, os.Symlink("target.txt", filepath.Join(srcRoot, "data", "link")))

		archive := filepath.Join(t.TempDir(), "data.tar.gz")
		_, err := CreateArchive(srcRoot, "data", archive)
		require.NoError(t, err)

		destRoot := t.TempDir()
		require.NoError(t, ExtractArchive(archive, destRoot))

		target, err := os.Readlink(filepath.Join(destRoot, "data", "link"))
		require.NoError(t, err)
		assert.Equal(t, "target.txt", target)
	})
}

func TestExtractArchive_RejectsTraversal(t *testing.T) {
	cases := []struct {
		name  string
		entry string
	}{
		{"parent escape", "../evil.txt"},
		{"absolute path", "/tmp/evil.txt"},
		{"nested escape", "data/../../evil.txt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			archive := craftArchive(t, tc.entry, "owned")
			workDir := t.TempDir()

			err := ExtractArchive(archive, workDir)
			require.Error(t, err)
			assert.NoFileExists(t, filepath.Join(filepath.Dir(workDir), "evil.txt"))
		})
	}
}

func TestExtractArchive_MissingFile(t *testing.T) {
	err := ExtractArchive(filepath.Join(t.TempDir(), "absent.tar.gz"), t.TempDir())
	require.Error(t, err)
}

// craftArchive builds a tar.gz with a single file entry under an arbitrary
// name, the way a hostile producer would.
func craftArchive(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "crafted.tar.gz")
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     name,
		Typeflag: tar.TypeReg,
		Mode:     0644,
		Size:     int64(len(content)),
	}))
	_, err = tw.Write([]byte(content))
	require.NoError(t, err)

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	return path
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, header.Name)
	}
	return names
}
