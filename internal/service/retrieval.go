package service

import (
	"context"
	"log"

	"github.com/dronemind-ai/dronemind/internal/domain"
)

// ChatClient streams completion tokens for a conversation.
type ChatClient interface {
	StreamChat(ctx context.Context, messages []domain.Message) (<-chan string, <-chan error, error)
}

// RetrievalChunkStore is the read-only store surface used per request.
type RetrievalChunkStore interface {
	Nearest(ctx context.Context, vector []float32, threshold float32, count int) ([]domain.RetrievedChunk, error)
	ListModels(ctx context.Context) ([]domain.ModelSummary, error)
}

// RetrievalConfig holds the similarity cutoff and result count used when
// no per-request override is given.
type RetrievalConfig struct {
	Threshold float32
	Count     int
}

// DefaultRetrievalConfig matches the production chat endpoint.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{Threshold: 0.2, Count: 3}
}

// AnswerInput is one chat request: the conversation so far plus an
// optional override of how many chunks to retrieve.
type AnswerInput struct {
	Messages   []domain.Message
	MatchCount int
}

// RetrievalService answers questions by retrieving relevant spec chunks
// and conditioning a streamed completion on them. Stateless per request;
// safe for concurrent use.
type RetrievalService struct {
	embedder EmbeddingClient
	chat     ChatClient
	store    RetrievalChunkStore
	cfg      RetrievalConfig
}

func NewRetrievalService(embedder EmbeddingClient, chat ChatClient, store RetrievalChunkStore, cfg RetrievalConfig) *RetrievalService {
	if cfg.Count <= 0 {
		cfg.Count = DefaultRetrievalConfig().Count
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultRetrievalConfig().Threshold
	}
	return &RetrievalService{
		embedder: embedder,
		chat:     chat,
		store:    store,
		cfg:      cfg,
	}
}

// Answer embeds the latest user question, retrieves the most similar
// chunks and streams a completion conditioned on them. Tokens arrive on
// the first channel as the upstream produces them; a failure mid-stream
// arrives on the second. Errors before streaming starts are returned
// directly.
func (s *RetrievalService) Answer(ctx context.Context, input AnswerInput) (<-chan string, <-chan error, error) {
	question, ok := domain.LatestUserContent(input.Messages)
	if !ok || question == "" {
		return nil, nil, domain.ErrEmptyConversation
	}

	// Known model names canonicalize the embedded question only; the
	// prompt always carries the user's original wording.
	embedText := question
	if models, err := s.store.ListModels(ctx); err != nil {
		log.Printf("retrieval: listing models failed, skipping normalization: %v", err)
	} else {
		names := make([]string, 0, len(models))
		for _, m := range models {
			names = append(names, m.ModelName)
		}
		embedText = domain.NormalizeModelMentions(question, names)
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, embedText)
	if err != nil {
		return nil, nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "embedding service call failed", err)
	}

	count := input.MatchCount
	if count <= 0 {
		count = s.cfg.Count
	}

	chunks, err := s.store.Nearest(ctx, vector, s.cfg.Threshold, count)
	if err != nil {
		return nil, nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "knowledge store query failed", err)
	}

	system := domain.Message{
		Role:    domain.RoleSystem,
		Content: BuildSystemPrompt(chunks, question),
	}
	conversation := append([]domain.Message{system}, input.Messages...)

	tokens, errs, err := s.chat.StreamChat(ctx, conversation)
	if err != nil {
		return nil, nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "completion service call failed", err)
	}

	return tokens, errs, nil
}
