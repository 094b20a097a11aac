// Package handler provides HTTP handlers for the archive API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Merlinthewizord/Scintara/internal/archive"
	"github.com/Merlinthewizord/Scintara/internal/dialogue"
	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
)

// ArchiveHandler handles archive read and trigger endpoints.
type ArchiveHandler struct {
	store  archive.Store
	engine *dialogue.Engine
	logger *logger.Logger
}

// NewArchiveHandler creates a new archive handler.
func NewArchiveHandler(store archive.Store, engine *dialogue.Engine, log *logger.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		store:  store,
		engine: engine,
		logger: log,
	}
}

// List handles GET /v1/archive
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := archive.ReadOptions{Limit: -1}

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = parsed
	}
	opts.Search = r.URL.Query().Get("q")

	records, err := h.store.Read(r.Context(), opts)
	if err != nil {
		h.logger.Error("failed to read archive")
		writeError(w, http.StatusInternalServerError, "failed to read archive")
		return
	}
	if records == nil {
		records = []model.ConversationRecord{}
	}

	writeJSON(w, http.StatusOK, model.ListArchiveResponse{Items: records})
}

// Get handles GET /v1/archive/:id
func (h *ArchiveHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to read archive record")
		writeError(w, http.StatusInternalServerError, "failed to read archive record")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Generate handles POST /v1/archive/generate. It runs one dialogue-and-
// archive cycle synchronously and reports the new record's identifier.
func (h *ArchiveHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Enabled() {
		writeError(w, http.StatusConflict, "automatic generation is disabled")
		return
	}

	rec, err := h.engine.GenerateAndArchive(r.Context(), "trigger")
	if err != nil {
		h.logger.Error("triggered dialogue generation failed")
		writeError(w, http.StatusBadGateway, "dialogue generation failed")
		return
	}
	if rec == nil {
		writeError(w, http.StatusConflict, "automatic generation is disabled")
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateResponse{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		Preview:   rec.Preview,
	})
}
