package fileutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/resdata/internal/errors"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	require.NoError(t, AtomicWriteFile(path, []byte("data_root: /a\n"), 0o600))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data_root: /a\n", string(got))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	t.Run("overwrites", func(t *testing.T) {
		require.NoError(t, AtomicWriteFile(path, []byte("data_root: /b\n"), 0o600))
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "data_root: /b\n", string(got))
	})

	t.Run("no temp files left", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), ".resdata-atomic-"), "leftover %s", e.Name())
		}
	})
}

func TestAtomicWriteFile_DirectoryNotExists(t *testing.T) {
	err := AtomicWriteFile(filepath.Join(t.TempDir(), "missing", "f"), []byte("x"), 0o600)
	assert.Error(t, err)
}

func TestAtomicWriteFile_RenameFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	// Renaming a file onto a non-empty directory fails on every platform.
	target := filepath.Join(dir, "occupied")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0o755))

	require.Error(t, AtomicWriteFile(target, []byte("x"), 0o600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAtomicWriteYAML_PreservesComments(t *testing.T) {
	src := "# where the shared data lives\ndata_root: /placeholder\n"
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, AtomicWriteYAML(path, &doc, 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, src, string(got))
}

func TestAtomicWriteYAML_Struct(t *testing.T) {
	v := struct {
		DataRoot string `yaml:"data_root"`
	}{DataRoot: "/srv/data"}

	path := filepath.Join(t.TempDir(), "c.yml")
	require.NoError(t, AtomicWriteYAML(path, v, 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data_root: /srv/data\n", string(got))
}

func TestAtomicWriteYAML_Unmarshalable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yml")
	err := AtomicWriteYAML(path, map[string]any{"f": func() {}}, 0o644)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestReadFileLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("config/config.yml\n"), 0o600))

	got, err := ReadFileWithLimit(path)
	require.NoError(t, err)
	assert.Equal(t, "config/config.yml\n", string(got))

	_, err = ReadFileLimit(path, 4)
	assert.True(t, errors.Is(err, ErrFileTooLarge), "got %v", err)

	_, err = ReadFileWithLimit(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
