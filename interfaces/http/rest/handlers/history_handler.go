package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"researchflow-backend/application/services"
)

// HistoryHandler exposes undo/redo over HTTP
type HistoryHandler struct {
	editor *services.Editor
	logger *zap.Logger
}

func NewHistoryHandler(editor *services.Editor, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{editor: editor, logger: logger}
}

// HistoryStatus reports stack depths and availability
type HistoryStatus struct {
	UndoDepth int  `json:"undo_depth"`
	RedoDepth int  `json:"redo_depth"`
	CanUndo   bool `json:"can_undo"`
	CanRedo   bool `json:"can_redo"`
}

func (h *HistoryHandler) status() HistoryStatus {
	undo, redo := h.editor.History().Depths()
	return HistoryStatus{
		UndoDepth: undo,
		RedoDepth: redo,
		CanUndo:   undo > 0,
		CanRedo:   redo > 0,
	}
}

// GetStatus handles GET /history
func (h *HistoryHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.status())
}

// Undo handles POST /history/undo
func (h *HistoryHandler) Undo(w http.ResponseWriter, r *http.Request) {
	undone := h.editor.Undo(r.Context())
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"undone": undone,
		"status": h.status(),
	})
}

// Redo handles POST /history/redo
func (h *HistoryHandler) Redo(w http.ResponseWriter, r *http.Request) {
	redone := h.editor.Redo(r.Context())
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"redone": redone,
		"status": h.status(),
	})
}

// Clear handles DELETE /history
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.editor.History().Clear(r.Context())
	respondJSON(w, h.logger, http.StatusOK, h.status())
}
