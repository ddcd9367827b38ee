package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/dronemind-ai/dronemind/internal/domain"
)

// dbtx is the subset of pgx used by repositories, satisfied by both
// *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChunkRepository handles persistence and similarity retrieval of spec chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// Insert persists a single chunk row.
func (r *ChunkRepository) Insert(ctx context.Context, c domain.Chunk) error {
	dateUpdated := c.DateUpdated
	if dateUpdated.IsZero() {
		dateUpdated = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO drone_chunks (content, vector, url, model_name, date_updated)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.Content,
		pgvector.NewVector(c.Embedding),
		c.SourceURL,
		c.ModelName,
		dateUpdated,
	)
	return err
}

// DeleteByURL removes all chunks previously ingested for a source URL.
// Re-ingestion replaces rows instead of appending duplicates.
func (r *ChunkRepository) DeleteByURL(ctx context.Context, url string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM drone_chunks WHERE url = $1`, url)
	return err
}

// Nearest returns up to count chunks whose cosine similarity to the query
// vector exceeds threshold, ordered by similarity descending. Zero matches
// yields an empty slice, not an error.
func (r *ChunkRepository) Nearest(ctx context.Context, vector []float32, threshold float32, count int) ([]domain.RetrievedChunk, error) {
	if threshold < 0 || threshold > 1 {
		return nil, domain.ErrInvalidThreshold
	}
	if count <= 0 {
		return nil, domain.ErrInvalidMatchCount
	}

	vec := pgvector.NewVector(vector)
	rows, err := r.db.Query(ctx,
		`SELECT content, url, date_updated, 1 - (vector <=> $1) AS similarity
		 FROM drone_chunks
		 WHERE 1 - (vector <=> $1) > $2
		 ORDER BY similarity DESC
		 LIMIT $3`,
		vec, threshold, count,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.RetrievedChunk, 0, count)
	for rows.Next() {
		var chunk domain.RetrievedChunk
		var dateUpdated *time.Time
		if err := rows.Scan(&chunk.Content, &chunk.SourceURL, &dateUpdated, &chunk.Similarity); err != nil {
			return nil, err
		}
		if chunk.Content == "" || chunk.SourceURL == "" {
			return nil, fmt.Errorf("malformed chunk row: missing content or url")
		}
		if dateUpdated != nil {
			chunk.DateUpdated = *dateUpdated
		}
		results = append(results, chunk)
	}

	return results, rows.Err()
}

// ListModels returns the distinct drone models present in the store.
func (r *ChunkRepository) ListModels(ctx context.Context) ([]domain.ModelSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT model_name, COUNT(*), MAX(date_updated)
		 FROM drone_chunks
		 GROUP BY model_name
		 ORDER BY model_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []domain.ModelSummary
	for rows.Next() {
		var m domain.ModelSummary
		var lastUpdated *time.Time
		if err := rows.Scan(&m.ModelName, &m.ChunkCount, &lastUpdated); err != nil {
			return nil, err
		}
		if lastUpdated != nil {
			m.LastUpdated = *lastUpdated
		}
		models = append(models, m)
	}

	return models, rows.Err()
}

// CountByURL returns the number of stored chunks for a source URL.
func (r *ChunkRepository) CountByURL(ctx context.Context, url string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM drone_chunks WHERE url = $1`, url).Scan(&count)
	return count, err
}
