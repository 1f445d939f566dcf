package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/autoimport-backend/internal/render"
)

type fakeGenerator struct {
	mu        sync.Mutex
	filenames []string
	err       error
	started   chan struct{}
	release   chan struct{}
}

func (g *fakeGenerator) ContentType() string { return "application/pdf" }

func (g *fakeGenerator) GenerateFromHTML(ctx context.Context, html, filename string) ([]byte, error) {
	g.mu.Lock()
	g.filenames = append(g.filenames, filename)
	g.mu.Unlock()

	if g.started != nil {
		close(g.started)
	}
	if g.release != nil {
		<-g.release
	}
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.4 " + filename), nil
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Upload(_ context.Context, key string, data []byte, contentType string) (*UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return &UploadResult{URL: "/files/" + key, Key: key, Size: int64(len(data)), MimeType: contentType}, nil
}

func (m *memoryStore) PresignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://files.example/" + key + "?ttl=" + ttl.String(), nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func TestExport(t *testing.T) {
	s, _ := newContractService(t)
	c := createContract(t, s)

	gen := &fakeGenerator{}
	store := newMemoryStore()
	exporter := NewContractExporter(s, gen, store, render.DefaultProvider(), time.Hour)

	result, err := exporter.Export(context.Background(), c.ID)
	require.NoError(t, err)

	assert.Equal(t, "contract-1.pdf", result.Filename)
	assert.Equal(t, []string{"contract-1.pdf"}, gen.filenames)
	assert.True(t, strings.HasPrefix(result.Key, "contracts/1/"))
	assert.True(t, strings.HasSuffix(result.Key, ".pdf"))
	assert.Contains(t, result.URL, result.Key)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, int64(len("%PDF-1.4 contract-1.pdf")), result.Size)
	assert.Len(t, result.Hash, 64)
	assert.Contains(t, store.objects, result.Key)
}

func TestExportGeneratorFailure(t *testing.T) {
	s, _ := newContractService(t)
	c := createContract(t, s)

	store := newMemoryStore()
	exporter := NewContractExporter(s, &fakeGenerator{err: errors.New("chromium down")}, store, render.DefaultProvider(), time.Hour)

	_, err := exporter.Export(context.Background(), c.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chromium down")
	assert.Empty(t, store.objects)
}

func TestPreviewIsStable(t *testing.T) {
	s, _ := newContractService(t)
	c := createContract(t, s)
	exporter := NewContractExporter(s, &fakeGenerator{}, newMemoryStore(), render.DefaultProvider(), time.Hour)

	html1, hash1, err := exporter.Preview(context.Background(), c.ID)
	require.NoError(t, err)
	html2, hash2, err := exporter.Preview(context.Background(), c.ID)
	require.NoError(t, err)

	assert.Equal(t, html1, html2)
	assert.Equal(t, hash1, hash2)
	assert.Contains(t, html1, "Ion Popescu")
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".html", extensionFor("text/html; charset=utf-8"))
	assert.Equal(t, ".pdf", extensionFor("application/pdf"))
}
