// Package file persists the project document and its history sidecar
// as JSON files in the project directory. Writes go through a temp
// file and rename so a crash never leaves a half-written file behind.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"researchflow-backend/application/ports"
	"researchflow-backend/pkg/errors"
)

const historyFileName = "undo_history.json"

// HistoryStore persists the undo/redo stacks next to the project data.
type HistoryStore struct {
	dir    string
	logger *zap.Logger
}

func NewHistoryStore(dir string, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{dir: dir, logger: logger}
}

func (s *HistoryStore) path() string {
	return filepath.Join(s.dir, historyFileName)
}

func (s *HistoryStore) Save(ctx context.Context, payload ports.HistoryPayload) error {
	if payload.UndoStack == nil {
		payload.UndoStack = []json.RawMessage{}
	}
	if payload.RedoStack == nil {
		payload.RedoStack = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.NewPersistenceError("encode history", err)
	}
	if err := writeFileAtomic(s.path(), data); err != nil {
		return errors.NewPersistenceError("write history", err)
	}
	s.logger.Debug("history saved",
		zap.Int("undo", len(payload.UndoStack)),
		zap.Int("redo", len(payload.RedoStack)))
	return nil
}

// Load returns an empty payload when no sidecar exists yet.
func (s *HistoryStore) Load(ctx context.Context) (ports.HistoryPayload, error) {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return ports.HistoryPayload{}, nil
	}
	if err != nil {
		return ports.HistoryPayload{}, errors.NewPersistenceError("read history", err)
	}
	var payload ports.HistoryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ports.HistoryPayload{}, errors.NewMalformedError("history sidecar is not valid JSON", err)
	}
	return payload, nil
}

// writeFileAtomic writes via a temp file in the same directory and
// renames it over the target.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
