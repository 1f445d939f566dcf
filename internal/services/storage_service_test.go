package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/autoimport-backend/internal/config"
)

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStorageService(ctx, config.StorageConfig{Driver: "local", LocalPath: dir})
	require.NoError(t, err)

	result, err := store.Upload(ctx, "contracts/7/abc.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "contracts/7/abc.pdf", result.Key)
	assert.Equal(t, "/uploads/contracts/7/abc.pdf", result.URL)
	assert.Equal(t, int64(4), result.Size)

	data, err := os.ReadFile(filepath.Join(dir, "contracts", "7", "abc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "contracts", "7"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	url, err := store.PresignedURL(ctx, result.Key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, result.URL, url)

	require.NoError(t, store.Delete(ctx, result.Key))
	_, err = store.PresignedURL(ctx, result.Key, time.Minute)
	assert.Error(t, err)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, result.Key))
}

func TestLocalStorageKeysStayInsideRoot(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStorageService(ctx, config.StorageConfig{
		Driver:    "local",
		LocalPath: dir,
		PublicURL: "https://cdn.example.ro/files/",
	})
	require.NoError(t, err)

	result, err := store.Upload(ctx, "../../etc/passwd", []byte("x"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", result.Key)
	assert.Equal(t, "https://cdn.example.ro/files/etc/passwd", result.URL)
	assert.FileExists(t, filepath.Join(dir, "etc", "passwd"))

	_, err = store.Upload(ctx, "/", []byte("x"), "text/plain")
	assert.Error(t, err)
}

func TestS3PublicURL(t *testing.T) {
	b, err := newS3Backend(config.StorageConfig{Region: "eu-central-1", Bucket: "contracts"})
	require.NoError(t, err)
	assert.Equal(t, "https://contracts.s3.eu-central-1.amazonaws.com/a/b.pdf", b.publicURL("a/b.pdf"))

	url, err := b.presign(context.Background(), "a/b.pdf", time.Minute)
	if err == nil {
		assert.Contains(t, url, "a/b.pdf")
	}
}

func TestMinioPublicURL(t *testing.T) {
	b := &minioBackend{bucket: "contracts", cfg: config.StorageConfig{Endpoint: "minio:9000"}}
	assert.Equal(t, "http://minio:9000/contracts/k.pdf", b.publicURL("k.pdf"))

	b.cfg.UseSSL = true
	assert.Equal(t, "https://minio:9000/contracts/k.pdf", b.publicURL("k.pdf"))
}
