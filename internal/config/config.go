package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	RetrievalThreshold float32 `envconfig:"RETRIEVAL_THRESHOLD" default:"0.2"`
	RetrievalCount     int     `envconfig:"RETRIEVAL_COUNT" default:"3"`

	ChunkMaxSize int `envconfig:"CHUNK_MAX_SIZE" default:"512"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"100"`

	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"60s"`
	FetchRetries int           `envconfig:"FETCH_RETRIES" default:"3"`

	// SeedURLs are the spec pages ingested by `dronemindd ingest` when no
	// URLs are given, and by the refresh worker.
	SeedURLs []string `envconfig:"SEED_URLS"`

	// RefreshInterval enables periodic re-ingestion of SeedURLs when > 0.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"0"`

	// Optional S3-compatible archive for raw fetched pages.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"dronemind-pages"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DRONEMIND", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
