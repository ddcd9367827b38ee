package domain

import "time"

// Chunk is a bounded segment of a scraped spec page stored with its embedding.
type Chunk struct {
	ID          int64
	Content     string
	Embedding   []float32
	SourceURL   string
	ModelName   string
	DateUpdated time.Time
}

// RetrievedChunk is a chunk returned from a similarity query, with its score.
type RetrievedChunk struct {
	Content     string
	SourceURL   string
	DateUpdated time.Time
	Similarity  float32
}

// ModelSummary describes one drone model present in the knowledge store.
type ModelSummary struct {
	ModelName   string
	ChunkCount  int
	LastUpdated time.Time
}

// Message is a single turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LatestUserContent returns the content of the most recent user message.
func LatestUserContent(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content, true
		}
	}
	return "", false
}
