package cli

import (
	"context"
	"fmt"
	"log"

	openailib "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/dronemind-ai/dronemind/internal/config"
	"github.com/dronemind-ai/dronemind/internal/database"
	"github.com/dronemind-ai/dronemind/internal/openai"
	"github.com/dronemind-ai/dronemind/internal/repository"
	"github.com/dronemind-ai/dronemind/internal/scrape"
	"github.com/dronemind-ai/dronemind/internal/service"
	"github.com/dronemind-ai/dronemind/internal/storage"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [urls...]",
		Short: "Fetch, chunk, embed and store spec pages",
		Long: `Run one knowledge refresh: fetch each spec page, split it into
overlapping chunks, embed every chunk and replace the stored rows for
that URL. With no arguments the configured DRONEMIND_SEED_URLS are used.`,
		RunE: runIngest,
	}

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	urls := args
	if len(urls) == 0 {
		urls = cfg.SeedURLs
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given and DRONEMIND_SEED_URLS is empty")
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("DRONEMIND_OPENAI_API_KEY is required to ingest")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	aiClient, err := newOpenAIClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	chunkRepo := repository.NewChunkRepository(pool)
	ingestSvc, err := newIngestService(ctx, cfg, aiClient, chunkRepo)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}

	log.Printf("ingesting %d spec pages", len(urls))
	if err := ingestSvc.Ingest(ctx, urls); err != nil {
		return fmt.Errorf("ingestion finished with errors: %w", err)
	}

	log.Println("ingestion complete")
	return nil
}

func newOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	return openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: openailib.EmbeddingModel(cfg.EmbeddingModel),
	})
}

func newIngestService(ctx context.Context, cfg *config.Config, aiClient *openai.Client, chunkRepo *repository.ChunkRepository) (*service.IngestService, error) {
	fetcher := scrape.NewHTTPFetcher(cfg.FetchTimeout)
	ingestCfg := service.IngestConfig{
		Split: service.SplitConfig{
			MaxSize:    cfg.ChunkMaxSize,
			Overlap:    cfg.ChunkOverlap,
			Separators: service.DefaultSplitConfig().Separators,
		},
		FetchRetries: cfg.FetchRetries,
		FetchBackoff: service.DefaultIngestConfig().FetchBackoff,
	}

	var archive service.PageArchive
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("page archive bucket '%s' ready", cfg.S3Bucket)
		archive = s3Client
	}

	return service.NewIngestServiceWithArchive(fetcher, aiClient, chunkRepo, archive, ingestCfg), nil
}
