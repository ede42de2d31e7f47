package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yatube/internal/config"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func TestLocalSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, PostsPrefix, "Small.GIF", strings.NewReader(string(smallGIF)), int64(len(smallGIF)), "image/gif")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "posts/"))
	assert.True(t, strings.HasSuffix(key, ".gif"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, smallGIF, data)
	assert.Equal(t, "/media/"+key, store.URL(key))
	assert.Empty(t, store.URL(""))

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, key), "deleting twice is fine")
}

func TestLocalRejectsNonImages(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), PostsPrefix, "notes.txt", strings.NewReader("hi"), 2, "text/plain")
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestNewLocal(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{
		Backend:   "local",
		Dir:       filepath.Join(t.TempDir(), "media"),
		URLPrefix: "/media",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Local{}, store)

	_, err = New(context.Background(), config.StorageConfig{Backend: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMinioURL(t *testing.T) {
	m := &Minio{bucket: "yatube", publicURL: "http://127.0.0.1:9000"}
	assert.Equal(t, "http://127.0.0.1:9000/yatube/posts/a.gif", m.URL("posts/a.gif"))
	assert.Empty(t, m.URL(""))
}
