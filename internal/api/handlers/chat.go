package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/dronemind-ai/dronemind/internal/api"
	"github.com/dronemind-ai/dronemind/internal/domain"
	"github.com/dronemind-ai/dronemind/internal/service"
)

// AnswerService produces a streamed answer for a conversation.
type AnswerService interface {
	Answer(ctx context.Context, input service.AnswerInput) (<-chan string, <-chan error, error)
}

// ChatHandler serves the streaming chat endpoint.
type ChatHandler struct {
	svc AnswerService
}

func NewChatHandler(svc AnswerService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Messages   []domain.Message `json:"messages"`
	MatchCount int              `json:"match_count,omitempty"`
}

type streamEvent struct {
	Content string `json:"content"`
}

// Chat handles POST /api/chat. The response is a text/event-stream of
// data events, one per token, terminated by a [DONE] event. Failures
// before the first token produce a JSON error; failures mid-stream
// terminate the stream with an error event.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		api.Error(w, http.StatusBadRequest, "messages are required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	tokens, errs, err := h.svc.Answer(r.Context(), service.AnswerInput{
		Messages:   req.Messages,
		MatchCount: req.MatchCount,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for tokens != nil || errs != nil {
		select {
		case token, open := <-tokens:
			if !open {
				tokens = nil
				continue
			}
			writeStreamEvent(w, flusher, token)
		case streamErr, open := <-errs:
			if !open {
				errs = nil
				continue
			}
			// Detail stays server-side; the client only learns the
			// stream broke.
			log.Printf("chat: stream failed: %v", streamErr)
			fmt.Fprint(w, "data: {\"error\": \"stream interrupted\"}\n\n")
			flusher.Flush()
			return
		case <-r.Context().Done():
			// Client went away; stop consuming so the upstream stream
			// is released.
			return
		}
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeStreamEvent(w http.ResponseWriter, flusher http.Flusher, token string) {
	payload, err := json.Marshal(streamEvent{Content: token})
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}
