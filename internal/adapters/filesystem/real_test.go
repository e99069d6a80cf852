package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealFileSystem_ReadWrite(t *testing.T) {
	t.Parallel()

	fs := NewRealFileSystem()
	dir := t.TempDir()
	path := filepath.Join(dir, ".bashrc")

	require.NoError(t, fs.WriteFile(path, []byte("export CC=clang\n"), 0o644))

	content, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "export CC=clang\n", string(content))
	assert.True(t, fs.Exists(path))
	assert.False(t, fs.IsDir(path))
}

func TestRealFileSystem_WriteFilePreservesMode(t *testing.T) {
	t.Parallel()

	fs := NewRealFileSystem()
	path := filepath.Join(t.TempDir(), "rc")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o600))

	require.NoError(t, fs.WriteFile(path, []byte("a\nb\n"), 0o644))

	info, err := fs.GetFileInfo(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode.Perm())
	assert.Equal(t, int64(4), info.Size)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestRealFileSystem_Dirs(t *testing.T) {
	t.Parallel()

	fs := NewRealFileSystem()
	dir := filepath.Join(t.TempDir(), "gnustep-build", ".srcbuild")

	require.NoError(t, fs.MkdirAll(dir, 0o755))
	assert.True(t, fs.IsDir(dir))

	info, err := fs.GetFileInfo(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir)

	require.NoError(t, fs.Remove(dir))
	assert.False(t, fs.Exists(dir))
}

func TestRealFileSystem_GetFileInfoMissing(t *testing.T) {
	t.Parallel()

	fs := NewRealFileSystem()
	_, err := fs.GetFileInfo(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
