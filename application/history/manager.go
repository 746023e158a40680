// Package history maintains the bounded undo/redo stacks and their
// persistence.
package history

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"researchflow-backend/application/commands"
	"researchflow-backend/application/ports"
	"researchflow-backend/pkg/observability"
)

// DefaultLimit is the per-stack command cap.
const DefaultLimit = 100

// Manager owns the undo and redo stacks. Every state-changing call
// re-persists both stacks through the configured store; persistence
// failures are logged and never block editing.
type Manager struct {
	mu      sync.Mutex
	mutator commands.Mutator
	store   ports.HistoryStore
	logger  *zap.Logger
	metrics *observability.HistoryMetrics

	undoStack []commands.Command
	redoStack []commands.Command
	limit     int
	replaying bool
}

func NewManager(mutator commands.Mutator, store ports.HistoryStore, logger *zap.Logger, metrics *observability.HistoryMetrics) *Manager {
	return &Manager{
		mutator: mutator,
		store:   store,
		logger:  logger,
		metrics: metrics,
		limit:   DefaultLimit,
	}
}

// SetLimit adjusts the stack cap and trims the oldest undo entries if
// the current stack exceeds it.
func (m *Manager) SetLimit(n int) {
	if n < 1 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = n
	if excess := len(m.undoStack) - n; excess > 0 {
		m.undoStack = append([]commands.Command(nil), m.undoStack[excess:]...)
	}
}

// Execute applies a command and pushes it onto the undo stack,
// discarding any redo branch. If the top of the stack can absorb the
// new command the top entry is updated in place instead and the redo
// branch survives. Calls made while an undo or redo is replaying are
// ignored.
func (m *Manager) Execute(ctx context.Context, cmd commands.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaying {
		return nil
	}
	if err := cmd.Apply(m.mutator); err != nil {
		return err
	}
	m.metrics.Executed(cmd.Kind())
	if n := len(m.undoStack); n > 0 {
		if top, ok := m.undoStack[n-1].(commands.Mergeable); ok && top.CanMergeWith(cmd) {
			top.MergeWith(cmd)
			m.metrics.Merged()
			m.persist(ctx)
			return nil
		}
	}
	m.redoStack = nil
	m.undoStack = append(m.undoStack, cmd)
	if len(m.undoStack) > m.limit {
		m.undoStack = append([]commands.Command(nil), m.undoStack[1:]...)
	}
	m.persist(ctx)
	return nil
}

// Undo reverts the most recent command. Returns false when the undo
// stack is empty.
func (m *Manager) Undo(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undoStack)
	if n == 0 {
		return false
	}
	cmd := m.undoStack[n-1]
	m.undoStack = m.undoStack[:n-1]
	m.replay(func() {
		if err := cmd.Revert(m.mutator); err != nil {
			m.logger.Warn("undo revert failed",
				zap.String("type", cmd.Kind()),
				zap.Error(err))
		}
	})
	m.redoStack = append(m.redoStack, cmd)
	m.metrics.Undone()
	m.persist(ctx)
	return true
}

// Redo re-applies the most recently undone command. Returns false when
// the redo stack is empty.
func (m *Manager) Redo(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redoStack)
	if n == 0 {
		return false
	}
	cmd := m.redoStack[n-1]
	m.redoStack = m.redoStack[:n-1]
	m.replay(func() {
		if err := cmd.Apply(m.mutator); err != nil {
			m.logger.Warn("redo apply failed",
				zap.String("type", cmd.Kind()),
				zap.Error(err))
		}
	})
	m.undoStack = append(m.undoStack, cmd)
	m.metrics.Redone()
	m.persist(ctx)
	return true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack) > 0
}

// Depths reports the current undo and redo stack sizes.
func (m *Manager) Depths() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack), len(m.redoStack)
}

// Clear drops both stacks and persists the empty history.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undoStack = nil
	m.redoStack = nil
	m.persist(ctx)
}

// Load replaces the stacks with the persisted history. Entries that no
// longer decode are skipped so one stale payload never discards the
// rest. The document snapshot must already be restored before loading.
func (m *Manager) Load(ctx context.Context) error {
	payload, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undoStack = m.decode(payload.UndoStack, "undo")
	m.redoStack = m.decode(payload.RedoStack, "redo")
	m.metrics.SetDepths(len(m.undoStack), len(m.redoStack))
	return nil
}

func (m *Manager) decode(raw []json.RawMessage, stack string) []commands.Command {
	decoded := make([]commands.Command, 0, len(raw))
	for i, entry := range raw {
		cmd, err := commands.Unmarshal(entry)
		if err != nil {
			m.logger.Warn("skipping unreadable history entry",
				zap.String("stack", stack),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		decoded = append(decoded, cmd)
	}
	return decoded
}

// replay runs fn with the replaying flag raised so reentrant Execute
// calls become no-ops.
func (m *Manager) replay(fn func()) {
	m.replaying = true
	defer func() { m.replaying = false }()
	fn()
}

// persist writes both stacks; callers hold the lock.
func (m *Manager) persist(ctx context.Context) {
	m.metrics.SetDepths(len(m.undoStack), len(m.redoStack))
	payload := ports.HistoryPayload{
		UndoStack: make([]json.RawMessage, 0, len(m.undoStack)),
		RedoStack: make([]json.RawMessage, 0, len(m.redoStack)),
	}
	ok := true
	for _, cmd := range m.undoStack {
		data, err := commands.Marshal(cmd)
		if err != nil {
			m.logger.Warn("skipping unserializable command",
				zap.String("type", cmd.Kind()),
				zap.Error(err))
			ok = false
			continue
		}
		payload.UndoStack = append(payload.UndoStack, data)
	}
	for _, cmd := range m.redoStack {
		data, err := commands.Marshal(cmd)
		if err != nil {
			m.logger.Warn("skipping unserializable command",
				zap.String("type", cmd.Kind()),
				zap.Error(err))
			ok = false
			continue
		}
		payload.RedoStack = append(payload.RedoStack, data)
	}
	if err := m.store.Save(ctx, payload); err != nil {
		m.logger.Warn("history persistence failed", zap.Error(err))
		ok = false
	}
	if !ok {
		m.metrics.PersistFailed()
	}
}
