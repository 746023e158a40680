package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"researchflow-backend/application/services"
	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
)

// NodeHandler handles node and snippet HTTP requests
type NodeHandler struct {
	editor *services.Editor
	logger *zap.Logger
}

func NewNodeHandler(editor *services.Editor, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{editor: editor, logger: logger}
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	Kind     string            `json:"kind"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	Metadata entities.Metadata `json:"metadata"`
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	node, err := h.editor.AddNode(r.Context(), entities.NodeKind(req.Kind), valueobjects.NewPosition(req.X, req.Y), req.Metadata)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, node)
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if err := h.editor.RemoveNode(r.Context(), nodeID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": nodeID})
}

// MoveNodeRequest carries a finished drag's end position
type MoveNodeRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveNode handles PUT /nodes/{nodeID}/position
func (h *NodeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	var req MoveNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.MoveNode(r.Context(), nodeID, valueobjects.NewPosition(req.X, req.Y)); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": nodeID})
}

// EditMetadataRequest sets one metadata field
type EditMetadataRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// EditMetadata handles PUT /nodes/{nodeID}/metadata
func (h *NodeHandler) EditMetadata(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	var req EditMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.EditNodeMetadata(r.Context(), nodeID, req.Field, req.Value); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": nodeID})
}

// ToggleTag handles POST /nodes/{nodeID}/tags/{tag}
func (h *NodeHandler) ToggleTag(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	tag := chi.URLParam(r, "tag")
	if err := h.editor.ToggleNodeTag(r.Context(), nodeID, tag); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": nodeID, "tag": tag})
}

// ToggleFlag handles POST /nodes/{nodeID}/flag
func (h *NodeHandler) ToggleFlag(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if err := h.editor.ToggleNodeFlag(r.Context(), nodeID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": nodeID})
}

// ToggleLock handles POST /nodes/{nodeID}/lock
func (h *NodeHandler) ToggleLock(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if err := h.editor.ToggleLock(r.Context(), nodeID, false); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": nodeID})
}

// AddSnippetRequest represents the request body for adding a snippet
type AddSnippetRequest struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// AddSnippet handles POST /nodes/{nodeID}/snippets
func (h *NodeHandler) AddSnippet(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	var req AddSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	snippet, err := h.editor.AddSnippet(r.Context(), nodeID, entities.SnippetKind(req.Kind), req.Content)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, snippet)
}

// DeleteSnippet handles DELETE /nodes/{nodeID}/snippets/{snippetID}
func (h *NodeHandler) DeleteSnippet(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	snippetID := chi.URLParam(r, "snippetID")
	if err := h.editor.RemoveSnippet(r.Context(), nodeID, snippetID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": snippetID})
}

// EditSnippetRequest sets a snippet's content or source label
type EditSnippetRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// EditSnippet handles PUT /nodes/{nodeID}/snippets/{snippetID}
func (h *NodeHandler) EditSnippet(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	snippetID := chi.URLParam(r, "snippetID")
	var req EditSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.EditSnippet(r.Context(), nodeID, snippetID, req.Field, req.Value); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": snippetID})
}

// MoveSnippetRequest reorders a snippet within its node
type MoveSnippetRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// MoveSnippet handles PUT /nodes/{nodeID}/snippets/{snippetID}/order
func (h *NodeHandler) MoveSnippet(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	snippetID := chi.URLParam(r, "snippetID")
	var req MoveSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.MoveSnippet(r.Context(), nodeID, snippetID, req.From, req.To); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": snippetID})
}
