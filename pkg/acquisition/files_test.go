package acquisition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile_ReturnsExactContent(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "setup.cfg"), "threshold = 5\nname = \"bob\"\n")

	content, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "threshold = 5\nname = \"bob\"\n", content)
}

func TestReadFile_MissingFileIncludesAbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.cfg")

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestReadFile_DirectoryIsNotAFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an existing file")
}

func TestReadConfigFiles_KeysAreBasenames(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "laser.cfg"), "power = 10")
	b := writeFile(t, filepath.Join(dir, "sub", "detector.cfg"), "gain = 2.5")

	configs, err := ReadConfigFiles([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, ConfigSet{
		"laser.cfg":    "power = 10",
		"detector.cfg": "gain = 2.5",
	}, configs)
}

func TestReadConfigFiles_DuplicateBasenameFails(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "one", "setup.cfg"), "x = 1")
	b := writeFile(t, filepath.Join(dir, "two", "setup.cfg"), "x = 2")

	configs, err := ReadConfigFiles([]string{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateConfigName)
	assert.Contains(t, err.Error(), "setup.cfg")
	assert.Nil(t, configs, "no partial result on failure")
}

func TestReadConfigFiles_MissingPathFails(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "setup.cfg"), "x = 1")

	_, err := ReadConfigFiles([]string{a, filepath.Join(dir, "gone.cfg")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.cfg")
}

func TestReadConfigFiles_EmptyInput(t *testing.T) {
	configs, err := ReadConfigFiles(nil)
	require.NoError(t, err)
	assert.Empty(t, configs)
}
