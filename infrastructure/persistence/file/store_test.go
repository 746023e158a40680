package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"researchflow-backend/application/ports"
	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
	pkgerrors "researchflow-backend/pkg/errors"
)

func TestHistoryStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(t.TempDir(), zap.NewNop())

	payload := ports.HistoryPayload{
		UndoStack: []json.RawMessage{
			json.RawMessage(`{"type":"TodoAdd","todo_text":"x","todo_index":0}`),
		},
		RedoStack: []json.RawMessage{
			json.RawMessage(`{"type":"TagAdd","tag_name":"core","tag_index":0}`),
		},
	}
	require.NoError(t, store.Save(ctx, payload))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.UndoStack, 1)
	require.Len(t, loaded.RedoStack, 1)
	assert.JSONEq(t, string(payload.UndoStack[0]), string(loaded.UndoStack[0]))
}

func TestHistoryStore_LoadAbsentFile(t *testing.T) {
	store := NewHistoryStore(t.TempDir(), zap.NewNop())

	payload, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payload.UndoStack)
	assert.Empty(t, payload.RedoStack)
}

func TestHistoryStore_SaveNormalizesNilStacks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewHistoryStore(dir, zap.NewNop())

	require.NoError(t, store.Save(ctx, ports.HistoryPayload{}))

	data, err := os.ReadFile(filepath.Join(dir, historyFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"undo_stack": []`)
	assert.Contains(t, string(data), `"redo_stack": []`)
}

func TestHistoryStore_LoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, historyFileName), []byte("{broken"), 0o644))

	store := NewHistoryStore(dir, zap.NewNop())
	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMalformed(err))
}

func TestHistoryStore_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewHistoryStore(dir, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, ports.HistoryPayload{}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, historyFileName, entries[0].Name())
}

func TestProjectStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewProjectStore(t.TempDir(), zap.NewNop())

	n := entities.NewNode(entities.NodeKindReference, valueobjects.NewPosition(10, 20))
	n.Metadata.Title = "GPT"
	snap := aggregates.ProjectSnapshot{
		Description: "survey",
		Tags:        []entities.Tag{{Name: "core", Color: "#112233"}},
		Todos:       []entities.Todo{{Text: "read", Done: true}},
		Nodes:       []entities.Node{*n},
		Palette:     entities.NewPalette(),
	}
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "survey", loaded.Description)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, n.ID, loaded.Nodes[0].ID)
	assert.Equal(t, "GPT", loaded.Nodes[0].Metadata.Title)
	require.Len(t, loaded.Todos, 1)
	assert.True(t, loaded.Todos[0].Done)
}

func TestProjectStore_LoadAbsentFile(t *testing.T) {
	store := NewProjectStore(t.TempDir(), zap.NewNop())

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Nodes)
	assert.Empty(t, snap.Description)
}
