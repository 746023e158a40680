package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"researchflow-backend/application/services"
)

// ProjectHandler handles project-level HTTP requests: the document
// snapshot, description, palette, global tags and todos, and the
// open/save lifecycle.
type ProjectHandler struct {
	editor *services.Editor
	logger *zap.Logger
}

func NewProjectHandler(editor *services.Editor, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{editor: editor, logger: logger}
}

// GetProject handles GET /project
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.editor.Snapshot())
}

// OpenProject handles POST /project/open
func (h *ProjectHandler) OpenProject(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.OpenProject(r.Context()); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "opened"})
}

// SaveProject handles POST /project/save
func (h *ProjectHandler) SaveProject(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.SaveProject(r.Context()); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "saved"})
}

// SetDescriptionRequest replaces the project description
type SetDescriptionRequest struct {
	Text string `json:"text"`
}

// SetDescription handles PUT /project/description
func (h *ProjectHandler) SetDescription(w http.ResponseWriter, r *http.Request) {
	var req SetDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.SetDescription(r.Context(), req.Text); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// SetEdgeColorsRequest replaces both global edge colors
type SetEdgeColorsRequest struct {
	PipelineColor  string `json:"pipeline_color"`
	ReferenceColor string `json:"reference_color"`
}

// SetEdgeColors handles PUT /project/edge-colors
func (h *ProjectHandler) SetEdgeColors(w http.ResponseWriter, r *http.Request) {
	var req SetEdgeColorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.SetEdgeColors(r.Context(), req.PipelineColor, req.ReferenceColor); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// SetModuleColorRequest recolors one module type
type SetModuleColorRequest struct {
	Color string `json:"color"`
}

// SetModuleColor handles PUT /project/module-colors/{moduleType}
func (h *ProjectHandler) SetModuleColor(w http.ResponseWriter, r *http.Request) {
	moduleType := chi.URLParam(r, "moduleType")
	var req SetModuleColorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.SetModuleColor(r.Context(), moduleType, req.Color); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"module_type": moduleType})
}

// CreateTagRequest adds a global tag
type CreateTagRequest struct {
	Name string `json:"name"`
}

// CreateTag handles POST /tags
func (h *ProjectHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.AddTag(r.Context(), req.Name); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, map[string]string{"name": req.Name})
}

// DeleteTag handles DELETE /tags/{name}
func (h *ProjectHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.editor.RemoveTag(r.Context(), name); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"name": name})
}

// UpdateTagRequest renames and/or recolors a tag
type UpdateTagRequest struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

// UpdateTag handles PUT /tags/{name}
func (h *ProjectHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req UpdateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Color != "" {
		if err := h.editor.RecolorTag(r.Context(), name, req.Color); err != nil {
			respondAppError(w, h.logger, err)
			return
		}
	}
	if req.Name != "" && req.Name != name {
		if err := h.editor.RenameTag(r.Context(), name, req.Name); err != nil {
			respondAppError(w, h.logger, err)
			return
		}
		name = req.Name
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"name": name})
}

// MoveRequest reorders a list entry
type MoveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// MoveTag handles PUT /tags/order
func (h *ProjectHandler) MoveTag(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.MoveTag(r.Context(), req.From, req.To); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateTodoRequest adds a todo item
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// CreateTodo handles POST /todos
func (h *ProjectHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.AddTodo(r.Context(), req.Text); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, map[string]string{"text": req.Text})
}

func todoIndex(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "index"))
}

// DeleteTodo handles DELETE /todos/{index}
func (h *ProjectHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	index, err := todoIndex(r)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid todo index")
		return
	}
	if err := h.editor.RemoveTodo(r.Context(), index); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]int{"index": index})
}

// UpdateTodoRequest rewrites a todo's text
type UpdateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodo handles PUT /todos/{index}
func (h *ProjectHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	index, err := todoIndex(r)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid todo index")
		return
	}
	var req UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.EditTodo(r.Context(), index, req.Text); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]int{"index": index})
}

// ToggleTodo handles POST /todos/{index}/toggle
func (h *ProjectHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	index, err := todoIndex(r)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid todo index")
		return
	}
	if err := h.editor.ToggleTodo(r.Context(), index); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]int{"index": index})
}

// MoveTodo handles PUT /todos/order
func (h *ProjectHandler) MoveTodo(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.editor.MoveTodo(r.Context(), req.From, req.To); err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}
