package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"researchflow-backend/application/services"
	"researchflow-backend/domain/core/valueobjects"
)

// GroupHandler handles group HTTP requests
type GroupHandler struct {
	editor *services.Editor
	logger *zap.Logger
}

func NewGroupHandler(editor *services.Editor, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{editor: editor, logger: logger}
}

// CreateGroupRequest represents the request body for creating a group
type CreateGroupRequest struct {
	Name    string            `json:"name"`
	Color   string            `json:"color"`
	Rect    valueobjects.Rect `json:"rect"`
	NodeIDs []string          `json:"node_ids"`
}

// CreateGroup handles POST /groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	group, err := h.editor.AddGroup(r.Context(), req.Name, req.Color, req.Rect, req.NodeIDs)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, group)
}

// DeleteGroup handles DELETE /groups/{groupID}
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.editor.RemoveGroup(r.Context(), groupID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": groupID})
}

// MoveGroupRequest carries a finished group drag's end position
type MoveGroupRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveGroup handles PUT /groups/{groupID}/position
func (h *GroupHandler) MoveGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	var req MoveGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.MoveGroup(r.Context(), groupID, valueobjects.NewPosition(req.X, req.Y)); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": groupID})
}

// ResizeGroupRequest sets a group's bounding rect
type ResizeGroupRequest struct {
	Rect valueobjects.Rect `json:"rect"`
}

// ResizeGroup handles PUT /groups/{groupID}/rect
func (h *GroupHandler) ResizeGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	var req ResizeGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.ResizeGroup(r.Context(), groupID, req.Rect); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": groupID})
}

// RenameGroupRequest renames a group
type RenameGroupRequest struct {
	Name string `json:"name"`
}

// RenameGroup handles PUT /groups/{groupID}/name
func (h *GroupHandler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	var req RenameGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.RenameGroup(r.Context(), groupID, req.Name); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": groupID})
}

// ToggleLock handles POST /groups/{groupID}/lock
func (h *GroupHandler) ToggleLock(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.editor.ToggleLock(r.Context(), groupID, true); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": groupID})
}

// ReparentNodeRequest moves a node into a group; an empty group id
// removes it from any group.
type ReparentNodeRequest struct {
	GroupID string `json:"group_id"`
}

// ReparentNode handles PUT /nodes/{nodeID}/group
func (h *GroupHandler) ReparentNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	var req ReparentNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.ReparentNode(r.Context(), nodeID, req.GroupID); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"id": nodeID})
}
