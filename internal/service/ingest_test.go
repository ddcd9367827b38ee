package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronemind-ai/dronemind/internal/domain"
)

type fakeFetcher struct {
	pages    map[string]string
	failures map[string]int
	calls    map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:    make(map[string]string),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls[url]++
	if f.failures[url] >= f.calls[url] {
		return "", fmt.Errorf("fetch %s: connection reset", url)
	}
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("fetch %s: unexpected status 404", url)
	}
	return page, nil
}

type fakeEmbedder struct {
	mu      sync.Mutex
	calls   int
	failOn  map[int]bool
	failAll bool
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll || f.failOn[f.calls] {
		return nil, errors.New("embedding service unavailable")
	}
	vec := make([]float32, 1536)
	vec[0] = float32(len(text))
	return vec, nil
}

type fakeChunkStore struct {
	mu       sync.Mutex
	inserted []domain.Chunk
	deleted  []string
	insErr   error
}

func (f *fakeChunkStore) DeleteByURL(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	var kept []domain.Chunk
	for _, c := range f.inserted {
		if c.SourceURL != url {
			kept = append(kept, c)
		}
	}
	f.inserted = kept
	return nil
}

func (f *fakeChunkStore) Insert(ctx context.Context, chunk domain.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insErr != nil {
		return f.insErr
	}
	f.inserted = append(f.inserted, chunk)
	return nil
}

func (f *fakeChunkStore) byURL(url string) []domain.Chunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Chunk
	for _, c := range f.inserted {
		if c.SourceURL == url {
			out = append(out, c)
		}
	}
	return out
}

type fakeArchive struct {
	snapshots map[string]string
	err       error
}

func (f *fakeArchive) PutPageSnapshot(ctx context.Context, modelName, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.snapshots == nil {
		f.snapshots = make(map[string]string)
	}
	key := "pages/" + modelName + "/latest.txt"
	f.snapshots[key] = content
	return key, nil
}

func testIngestConfig() IngestConfig {
	return IngestConfig{
		Split:        DefaultSplitConfig(),
		FetchRetries: 3,
		FetchBackoff: time.Millisecond,
	}
}

func TestIngest_StoresChunksWithModelName(t *testing.T) {
	const url = "https://www.dji.com/mavic-4-pro/specs"

	fetcher := newFakeFetcher()
	fetcher.pages[url] = buildSpecText(200) // well past one chunk

	store := &fakeChunkStore{}
	svc := NewIngestService(fetcher, &fakeEmbedder{}, store, testIngestConfig())

	err := svc.Ingest(context.Background(), []string{url})
	require.NoError(t, err)

	chunks := store.byURL(url)
	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), 512)
		assert.Equal(t, "mavic-4-pro", c.ModelName)
		assert.Equal(t, url, c.SourceURL)
		assert.Len(t, c.Embedding, 1536)
		assert.False(t, c.DateUpdated.IsZero())
	}
}

func TestIngest_ShortPageSingleChunk(t *testing.T) {
	const url = "https://www.dji.com/mini-5/specs"

	fetcher := newFakeFetcher()
	fetcher.pages[url] = "Weight: 249g, Max Flight Time: 34 minutes"

	store := &fakeChunkStore{}
	svc := NewIngestService(fetcher, &fakeEmbedder{}, store, testIngestConfig())

	require.NoError(t, svc.Ingest(context.Background(), []string{url}))
	chunks := store.byURL(url)
	require.Len(t, chunks, 1)
	assert.Equal(t, fetcher.pages[url], chunks[0].Content)
}

func TestIngest_ReingestReplacesRows(t *testing.T) {
	const url = "https://www.dji.com/air-3s/specs"

	fetcher := newFakeFetcher()
	fetcher.pages[url] = buildSpecText(200)

	store := &fakeChunkStore{}
	svc := NewIngestService(fetcher, &fakeEmbedder{}, store, testIngestConfig())

	require.NoError(t, svc.Ingest(context.Background(), []string{url}))
	first := len(store.byURL(url))

	fetcher.pages[url] = buildSpecText(150) // shorter page on refresh
	require.NoError(t, svc.Ingest(context.Background(), []string{url}))

	second := len(store.byURL(url))
	assert.Less(t, second, first)
	assert.Equal(t, []string{url, url}, store.deleted)
}

func TestIngest_FetchRetriesThenSucceeds(t *testing.T) {
	const url = "https://www.dji.com/inspire-3/specs"

	fetcher := newFakeFetcher()
	fetcher.pages[url] = "Gimbal: 3-axis, Sensor: full frame"
	fetcher.failures[url] = 2 // first two attempts fail

	store := &fakeChunkStore{}
	svc := NewIngestService(fetcher, &fakeEmbedder{}, store, testIngestConfig())

	require.NoError(t, svc.Ingest(context.Background(), []string{url}))
	assert.Equal(t, 3, fetcher.calls[url])
	assert.Len(t, store.byURL(url), 1)
}

func TestIngest_FetchFailsAfterAllRetries(t *testing.T) {
	const url = "https://www.dji.com/gone/specs"

	fetcher := newFakeFetcher()
	fetcher.failures[url] = 10

	store := &fakeChunkStore{}
	svc := NewIngestService(fetcher, &fakeEmbedder{}, store, testIngestConfig())

	err := svc.Ingest(context.Background(), []string{url})
	require.Error(t, err)
	assert.Equal(t, 3, fetcher.calls[url])
	assert.Empty(t, store.inserted)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeUpstream, domainErr.Code)
}

func TestIngest_OneFailingURLDoesNotStopOthers(t *testing.T) {
	const good = "https://www.dji.com/mavic-4-pro/specs"
	const bad = "https://www.dji.com/broken/specs"

	fetcher := newFakeFetcher()
	fetcher.pages[good] = "Max speed: 25 m/s"
	fetcher.failures[bad] = 10

	store := &fakeChunkStore{}
	svc := NewIngestService(fetcher, &fakeEmbedder{}, store, testIngestConfig())

	err := svc.Ingest(context.Background(), []string{bad, good})
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
	assert.Len(t, store.byURL(good), 1)
}

func TestIngest_EmbeddingFailureSkipsChunkOnly(t *testing.T) {
	const url = "https://www.dji.com/mavic-4-pro/specs"

	fetcher := newFakeFetcher()
	fetcher.pages[url] = buildSpecText(200)

	store := &fakeChunkStore{}
	embedder := &fakeEmbedder{failOn: map[int]bool{1: true}}
	svc := NewIngestService(fetcher, embedder, store, testIngestConfig())

	require.NoError(t, svc.Ingest(context.Background(), []string{url}))

	chunks := store.byURL(url)
	require.NotEmpty(t, chunks)
	assert.Equal(t, embedder.calls-1, len(chunks))
}

func TestIngest_ArchivesSnapshot(t *testing.T) {
	const url = "https://www.dji.com/mavic-4-pro/specs"

	fetcher := newFakeFetcher()
	fetcher.pages[url] = "Max Flight Time: 45 minutes"

	store := &fakeChunkStore{}
	archive := &fakeArchive{}
	svc := NewIngestServiceWithArchive(fetcher, &fakeEmbedder{}, store, archive, testIngestConfig())

	require.NoError(t, svc.Ingest(context.Background(), []string{url}))

	require.Len(t, archive.snapshots, 1)
	for key, content := range archive.snapshots {
		assert.True(t, strings.HasPrefix(key, "pages/mavic-4-pro/"))
		assert.Equal(t, fetcher.pages[url], content)
	}
}

func TestIngest_ArchiveFailureIsNotFatal(t *testing.T) {
	const url = "https://www.dji.com/mavic-4-pro/specs"

	fetcher := newFakeFetcher()
	fetcher.pages[url] = "Max Flight Time: 45 minutes"

	store := &fakeChunkStore{}
	archive := &fakeArchive{err: errors.New("bucket unavailable")}
	svc := NewIngestServiceWithArchive(fetcher, &fakeEmbedder{}, store, archive, testIngestConfig())

	require.NoError(t, svc.Ingest(context.Background(), []string{url}))
	assert.Len(t, store.byURL(url), 1)
}

func TestIngest_EmptyPageSkipped(t *testing.T) {
	const url = "https://www.dji.com/empty/specs"

	fetcher := newFakeFetcher()
	fetcher.pages[url] = ""

	store := &fakeChunkStore{}
	svc := NewIngestService(fetcher, &fakeEmbedder{}, store, testIngestConfig())

	require.NoError(t, svc.Ingest(context.Background(), []string{url}))
	assert.Empty(t, store.inserted)
	assert.Empty(t, store.deleted)
}
