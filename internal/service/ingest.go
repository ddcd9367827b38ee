package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dronemind-ai/dronemind/internal/domain"
	"github.com/dronemind-ai/dronemind/internal/telemetry"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// PageFetcher retrieves the rendered text of a spec page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// IngestChunkStore is the persistence surface used by ingestion.
type IngestChunkStore interface {
	DeleteByURL(ctx context.Context, url string) error
	Insert(ctx context.Context, chunk domain.Chunk) error
}

// PageArchive stores raw fetched pages for later audit. Optional.
type PageArchive interface {
	PutPageSnapshot(ctx context.Context, modelName, content string) (string, error)
}

// IngestConfig controls fetching and chunking for an ingestion run.
type IngestConfig struct {
	Split        SplitConfig
	FetchRetries int
	// FetchBackoff is the linear backoff step between fetch attempts,
	// so attempt n waits n*FetchBackoff before retrying.
	FetchBackoff time.Duration
}

// DefaultIngestConfig matches the knowledge-refresh defaults.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Split:        DefaultSplitConfig(),
		FetchRetries: 3,
		FetchBackoff: 2 * time.Second,
	}
}

// IngestService populates the knowledge store from vendor spec pages.
// A single run at a time; concurrent runs are not coordinated.
type IngestService struct {
	fetcher  PageFetcher
	embedder EmbeddingClient
	store    IngestChunkStore
	archive  PageArchive
	cfg      IngestConfig
}

// NewIngestService creates an ingestion pipeline without page archiving.
func NewIngestService(fetcher PageFetcher, embedder EmbeddingClient, store IngestChunkStore, cfg IngestConfig) *IngestService {
	return NewIngestServiceWithArchive(fetcher, embedder, store, nil, cfg)
}

// NewIngestServiceWithArchive creates an ingestion pipeline that also
// archives raw page snapshots.
func NewIngestServiceWithArchive(fetcher PageFetcher, embedder EmbeddingClient, store IngestChunkStore, archive PageArchive, cfg IngestConfig) *IngestService {
	if cfg.FetchRetries <= 0 {
		cfg.FetchRetries = DefaultIngestConfig().FetchRetries
	}
	if cfg.FetchBackoff <= 0 {
		cfg.FetchBackoff = DefaultIngestConfig().FetchBackoff
	}
	if cfg.Split.MaxSize <= 0 {
		cfg.Split = DefaultSplitConfig()
	}
	return &IngestService{
		fetcher:  fetcher,
		embedder: embedder,
		store:    store,
		archive:  archive,
		cfg:      cfg,
	}
}

// Ingest fetches, chunks, embeds and stores every URL. A URL whose fetch
// fails after all retries is reported but does not stop the remaining
// URLs; the joined error covers all failed URLs.
func (s *IngestService) Ingest(ctx context.Context, urls []string) error {
	var errs []error
	for _, url := range urls {
		if err := s.ingestURL(ctx, url); err != nil {
			log.Printf("ingest: %s failed: %v", url, err)
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
		}
	}
	return errors.Join(errs...)
}

func (s *IngestService) ingestURL(ctx context.Context, url string) error {
	ctx, span := telemetry.StartSpan(ctx, "ingest.url", telemetry.SpanAttributes{
		SourceURL: url,
		Operation: "ingest",
	})
	defer span.End()

	log.Printf("ingest: fetching %s", url)

	var content string
	err := Retry(ctx, s.cfg.FetchRetries, LinearDelay(s.cfg.FetchBackoff), func(ctx context.Context) error {
		fetched, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			return err
		}
		content = fetched
		return nil
	})
	if err != nil {
		span.SetError(err)
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "page fetch failed after retries", err)
	}

	modelName := domain.ExtractModelName(url)
	log.Printf("ingest: %s fetched (%d chars, model %s)", url, len([]rune(content)), modelName)

	if s.archive != nil {
		if key, err := s.archive.PutPageSnapshot(ctx, modelName, content); err != nil {
			log.Printf("ingest: snapshot archive failed for %s: %v", url, err)
		} else {
			log.Printf("ingest: archived %s as %s", url, key)
		}
	}

	chunks, err := Split(content, s.cfg.Split)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		log.Printf("ingest: %s produced no chunks, skipping", url)
		return nil
	}

	// Replace rows for this URL so re-ingestion stays idempotent.
	if err := s.store.DeleteByURL(ctx, url); err != nil {
		return fmt.Errorf("failed to clear existing chunks: %w", err)
	}

	now := time.Now().UTC()
	stored := 0
	for i, chunk := range chunks {
		embedding, err := s.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			log.Printf("ingest: embedding chunk %d of %s failed: %v", i, url, err)
			continue
		}
		row := domain.Chunk{
			Content:     chunk,
			Embedding:   embedding,
			SourceURL:   url,
			ModelName:   modelName,
			DateUpdated: now,
		}
		if err := s.store.Insert(ctx, row); err != nil {
			log.Printf("ingest: storing chunk %d of %s failed: %v", i, url, err)
			continue
		}
		stored++
	}

	log.Printf("ingest: %s stored %d/%d chunks", url, stored, len(chunks))
	return nil
}
