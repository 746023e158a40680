package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/pkg/errors"
)

const projectFileName = "project_data.json"

// ProjectStore persists the full document snapshot, independently of
// the history sidecar.
type ProjectStore struct {
	dir    string
	logger *zap.Logger
}

func NewProjectStore(dir string, logger *zap.Logger) *ProjectStore {
	return &ProjectStore{dir: dir, logger: logger}
}

func (s *ProjectStore) path() string {
	return filepath.Join(s.dir, projectFileName)
}

func (s *ProjectStore) Save(ctx context.Context, snapshot aggregates.ProjectSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.NewPersistenceError("encode project", err)
	}
	if err := writeFileAtomic(s.path(), data); err != nil {
		return errors.NewPersistenceError("write project", err)
	}
	s.logger.Debug("project saved",
		zap.Int("nodes", len(snapshot.Nodes)),
		zap.Int("edges", len(snapshot.Edges)))
	return nil
}

// Load returns an empty snapshot when no project file exists yet.
func (s *ProjectStore) Load(ctx context.Context) (aggregates.ProjectSnapshot, error) {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return aggregates.ProjectSnapshot{}, nil
	}
	if err != nil {
		return aggregates.ProjectSnapshot{}, errors.NewPersistenceError("read project", err)
	}
	var snapshot aggregates.ProjectSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return aggregates.ProjectSnapshot{}, errors.NewMalformedError("project file is not valid JSON", err)
	}
	return snapshot, nil
}
