// Package memory provides in-memory stores for tests and ephemeral
// sessions.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"researchflow-backend/application/ports"
	"researchflow-backend/domain/core/aggregates"
)

// HistoryStore keeps the persisted stacks in memory.
type HistoryStore struct {
	mu      sync.RWMutex
	payload ports.HistoryPayload
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) Save(ctx context.Context, payload ports.HistoryPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = clonePayload(payload)
	return nil
}

func (s *HistoryStore) Load(ctx context.Context) (ports.HistoryPayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePayload(s.payload), nil
}

func clonePayload(p ports.HistoryPayload) ports.HistoryPayload {
	out := ports.HistoryPayload{
		UndoStack: make([]json.RawMessage, len(p.UndoStack)),
		RedoStack: make([]json.RawMessage, len(p.RedoStack)),
	}
	for i, raw := range p.UndoStack {
		out.UndoStack[i] = append(json.RawMessage(nil), raw...)
	}
	for i, raw := range p.RedoStack {
		out.RedoStack[i] = append(json.RawMessage(nil), raw...)
	}
	return out
}

// ProjectStore keeps the document snapshot in memory.
type ProjectStore struct {
	mu       sync.RWMutex
	snapshot aggregates.ProjectSnapshot
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{}
}

func (s *ProjectStore) Save(ctx context.Context, snapshot aggregates.ProjectSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	return nil
}

func (s *ProjectStore) Load(ctx context.Context) (aggregates.ProjectSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, nil
}
