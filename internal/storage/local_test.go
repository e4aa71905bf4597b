package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, err := store.UploadFromBytes([]byte("png-bytes"), "logo.PNG", "slates/abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "slates/abc/"))
	assert.True(t, strings.HasSuffix(path, ".png"))
	assert.True(t, store.Exists(path))

	data, err := os.ReadFile(filepath.Join(store.BasePath(), path))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(path))
	assert.False(t, store.Exists(path))
	assert.NoError(t, store.Delete(path))
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.UploadFromBytes([]byte("x"), "a.png", "../outside")
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.ErrorIs(t, store.Delete("../../etc/passwd"), ErrInvalidPath)
	assert.ErrorIs(t, store.Delete("/etc/passwd"), ErrInvalidPath)
	assert.False(t, store.Exists("../x"))
}

func TestIsLogoContentType(t *testing.T) {
	assert.True(t, IsLogoContentType("image/png"))
	assert.True(t, IsLogoContentType("IMAGE/JPEG"))
	assert.False(t, IsLogoContentType("application/pdf"))
}
