package fs

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMkdirAll(t *testing.T) {
	dir := t.TempDir()
	fs := New()
	err := fs.MkdirAll(path.Join(dir, "foo/bar"))
	assert.NoError(t, err)
}

func TestMkdirTemp(t *testing.T) {
	parent := t.TempDir()
	fs := New()
	dir, err := fs.MkdirTemp(parent, "postgrestools-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path.Base(dir), "postgrestools-"))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	fs := New()
	name := path.Join(dir, "postgrestools.jsonc")

	require.NoError(t, fs.WriteFile(name, `{"db":{}}`))

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, `{"db":{}}`, string(data))
}

func TestRemoveAll(t *testing.T) {
	dir := path.Join(t.TempDir(), "config")
	fs := New()
	require.NoError(t, fs.MkdirAll(dir))
	require.NoError(t, fs.WriteFile(path.Join(dir, "a"), "x"))

	assert.NoError(t, fs.RemoveAll(dir))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
