package service

import (
	"fmt"
	"strings"

	"github.com/dronemind-ai/dronemind/internal/domain"
)

const systemPromptTemplate = `You are DroneMind, a technical assistant for consumer drone products. You provide detailed, accurate specification data and professional advice about drones.

Answer the user's question based on the following knowledge base content:
----------------
KNOWLEDGE BASE START
%s
KNOWLEDGE BASE END
----------------

Answering rules:
1. Answer in Markdown, including source links and the date the information was last updated where available.
2. Focus on technical parameters, specifications and performance figures.
3. If the knowledge base does not cover the question, you may fall back on general knowledge, but clearly mark such content as possibly outdated.
4. If the question is unrelated to drones, politely explain that you only answer drone questions.
5. For parameter questions, give exact values with units.
6. When the answer touches flight operations, remind the user to follow local aviation regulations.

----------------
User question: %s
----------------`

// BuildSystemPrompt renders the system instruction for one request.
// The question passed here must be the user's original wording, not the
// normalized variant used for embedding.
func BuildSystemPrompt(chunks []domain.RetrievedChunk, question string) string {
	return fmt.Sprintf(systemPromptTemplate, FormatContext(chunks), question)
}

// FormatContext renders retrieved chunks as a context block. An empty
// retrieval yields an explicit empty marker rather than an error.
func FormatContext(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "(no matching knowledge base entries)"
	}

	var sb strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Source: ")
		sb.WriteString(chunk.SourceURL)
		sb.WriteString("\n")
		if !chunk.DateUpdated.IsZero() {
			sb.WriteString("Date Updated: ")
			sb.WriteString(chunk.DateUpdated.UTC().Format("2006-01-02"))
			sb.WriteString("\n")
		}
		sb.WriteString("Content: ")
		sb.WriteString(chunk.Content)
	}
	return sb.String()
}
