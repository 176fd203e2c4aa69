package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"classifieds_backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := storage.New(storage.Config{Type: storage.TypeLocal, BasePath: t.TempDir()})
	require.NoError(t, err)

	const key = "advertisements/1/image.jpg"

	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	require.NoError(t, s.Save(ctx, key, strings.NewReader("payload"), "image/jpeg"))

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "повторное удаление не ошибка")

	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	err = s.Save(context.Background(), "../escape.txt", strings.NewReader("x"), "text/plain")
	assert.Error(t, err)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := storage.New(storage.Config{Type: "ftp"})
	assert.Error(t, err)
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := storage.NewS3Storage(storage.Config{Type: storage.TypeS3})
	assert.Error(t, err)
}
