// Package ports defines the interfaces between the application layer
// and infrastructure adapters.
package ports

import (
	"context"
	"encoding/json"

	"researchflow-backend/domain/core/aggregates"
)

// HistoryPayload is the persisted shape of the edit history: two stacks
// of already-encoded command payloads, oldest first.
type HistoryPayload struct {
	UndoStack []json.RawMessage `json:"undo_stack"`
	RedoStack []json.RawMessage `json:"redo_stack"`
}

// HistoryStore persists the undo/redo stacks alongside the project.
type HistoryStore interface {
	Save(ctx context.Context, payload HistoryPayload) error
	Load(ctx context.Context) (HistoryPayload, error)
}

// ProjectStore persists the document snapshot.
type ProjectStore interface {
	Save(ctx context.Context, snapshot aggregates.ProjectSnapshot) error
	Load(ctx context.Context) (aggregates.ProjectSnapshot, error)
}
