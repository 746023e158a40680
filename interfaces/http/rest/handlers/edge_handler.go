package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"researchflow-backend/application/services"
)

// EdgeHandler handles edge HTTP requests
type EdgeHandler struct {
	editor *services.Editor
	logger *zap.Logger
}

func NewEdgeHandler(editor *services.Editor, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{editor: editor, logger: logger}
}

// CreateEdgeRequest represents the request body for connecting nodes
type CreateEdgeRequest struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// CreateEdge handles POST /edges
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	edge, err := h.editor.Connect(r.Context(), req.SourceID, req.TargetID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, edge)
}

// DeleteEdge handles DELETE /edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeID")
	if err := h.editor.Disconnect(r.Context(), edgeID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": edgeID})
}
