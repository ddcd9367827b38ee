package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dronemind-ai/dronemind/internal/api"
	"github.com/dronemind-ai/dronemind/internal/domain"
)

// ModelLister lists the drone models present in the knowledge store.
type ModelLister interface {
	ListModels(ctx context.Context) ([]domain.ModelSummary, error)
}

// ModelsHandler serves the parameter-library model listing.
type ModelsHandler struct {
	store ModelLister
}

func NewModelsHandler(store ModelLister) *ModelsHandler {
	return &ModelsHandler{store: store}
}

type ModelResponse struct {
	ModelName   string `json:"model_name"`
	ChunkCount  int    `json:"chunk_count"`
	LastUpdated string `json:"last_updated,omitempty"`
}

type ModelsResponse struct {
	Models []*ModelResponse `json:"models"`
}

// List handles GET /api/models.
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	models, err := h.store.ListModels(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ModelResponse, len(models))
	for i, m := range models {
		lastUpdated := ""
		if !m.LastUpdated.IsZero() {
			lastUpdated = m.LastUpdated.UTC().Format(time.RFC3339)
		}
		responses[i] = &ModelResponse{
			ModelName:   m.ModelName,
			ChunkCount:  m.ChunkCount,
			LastUpdated: lastUpdated,
		}
	}

	api.Success(w, http.StatusOK, ModelsResponse{Models: responses})
}
