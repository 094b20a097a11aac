package handler

import (
	"net/http"

	"github.com/Merlinthewizord/Scintara/internal/llm"
	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/internal/persona"
)

// MetaHandler serves persona and model metadata for the front end.
type MetaHandler struct {
	client llm.Client
	info   model.ModelInfo
}

// NewMetaHandler creates a new metadata handler.
func NewMetaHandler(client llm.Client, defaultModel string, maxTokens int, temperature, topP float64) *MetaHandler {
	return &MetaHandler{
		client: client,
		info: model.ModelInfo{
			Provider:    client.Name(),
			Model:       defaultModel,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			TopP:        topP,
		},
	}
}

// Personas handles GET /v1/personas
func (h *MetaHandler) Personas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]persona.Persona{
		"personas": persona.All(),
	})
}

// ModelInfo handles GET /v1/model
func (h *MetaHandler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}
