// Package services hosts the mutation gatekeeper: the Editor owns the
// document, raises validated intents for interactive edits and exposes
// the replay surface commands run against.
package services

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"researchflow-backend/application/history"
	"researchflow-backend/application/ports"
	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
	"researchflow-backend/pkg/errors"
	"researchflow-backend/pkg/observability"
)

// ChangeEvent tells subscribers which entity collection changed. The
// rendering surface refreshes from document reads; events carry no
// payload beyond the id.
type ChangeEvent struct {
	Kind aggregates.EntityKind
	ID   string
}

// Handler processes one intent kind: construct the command, submit it
// to history. Handlers run synchronously under the editor's lock.
type Handler func(ctx context.Context, intent Intent) error

// Editor is the single owner of the document. Interactive methods
// validate and dispatch intents; the commands.Mutator methods are the
// replay face and are only ever invoked from command Apply/Revert
// while an interactive call or an undo/redo holds the editor lock.
type Editor struct {
	mu          sync.Mutex
	doc         *aggregates.Document
	history     *history.Manager
	projects    ports.ProjectStore
	validate    *validator.Validate
	logger      *zap.Logger
	handlers    map[string]Handler
	subscribers []func(ChangeEvent)
}

func NewEditor(doc *aggregates.Document, historyStore ports.HistoryStore, projectStore ports.ProjectStore, logger *zap.Logger, metrics *observability.HistoryMetrics) *Editor {
	e := &Editor{
		doc:      doc,
		projects: projectStore,
		validate: validator.New(),
		logger:   logger,
		handlers: make(map[string]Handler),
	}
	e.history = history.NewManager(e, historyStore, logger, metrics)
	return e
}

// History exposes the undo/redo manager for depth queries and limit
// configuration.
func (e *Editor) History() *history.Manager {
	return e.history
}

// RegisterHandler binds the single handler for an intent kind.
func (e *Editor) RegisterHandler(kind string, h Handler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.handlers[kind]; exists {
		return errors.NewConflictError("handler already registered for intent '" + kind + "'")
	}
	e.handlers[kind] = h
	return nil
}

// Subscribe registers a change listener. Listeners run synchronously
// after each applied mutation and must not call back into the editor.
func (e *Editor) Subscribe(fn func(ChangeEvent)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

func (e *Editor) notify(kind aggregates.EntityKind, id string) {
	ev := ChangeEvent{Kind: kind, ID: id}
	for _, fn := range e.subscribers {
		fn(ev)
	}
}

// dispatch validates an intent and routes it to its handler; callers
// hold the lock.
func (e *Editor) dispatch(ctx context.Context, intent Intent) error {
	if err := e.validate.Struct(intent); err != nil {
		appErr := errors.NewValidationError("invalid " + intent.IntentKind() + " intent")
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) {
			details := make(map[string]interface{}, len(fieldErrs))
			for _, fe := range fieldErrs {
				details[fe.Field()] = fe.Tag()
			}
			appErr = appErr.WithDetails(details)
		}
		return appErr
	}
	h, ok := e.handlers[intent.IntentKind()]
	if !ok {
		return errors.NewUnhandledError(intent.IntentKind())
	}
	return h(ctx, intent)
}

// --- Interactive face ---

// AddNode creates a node of the given kind and returns its snapshot.
func (e *Editor) AddNode(ctx context.Context, kind entities.NodeKind, pos valueobjects.Position, meta entities.Metadata) (*entities.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := entities.NewNode(kind, pos)
	n.Metadata = meta
	if err := e.dispatch(ctx, AddNodeIntent{Node: n}); err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

func (e *Editor) RemoveNode(ctx context.Context, nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, RemoveNodeIntent{NodeID: nodeID})
}

// MoveNode finishes a node drag. The document position is updated
// immediately, mirroring the drag; the recorded command's first apply
// is suppressed so execute does not double-move.
func (e *Editor) MoveNode(ctx context.Context, nodeID string, newPos valueobjects.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.doc.Node(nodeID)
	if !ok {
		return errors.NewNotFoundError("node " + nodeID)
	}
	if n.Locked {
		return errors.NewConflictError("node " + nodeID + " is locked")
	}
	oldPos := n.Position
	if err := e.doc.SetNodePosition(nodeID, newPos); err != nil {
		return err
	}
	e.notify(aggregates.KindNode, nodeID)
	return e.dispatch(ctx, MoveNodeIntent{NodeID: nodeID, OldPos: oldPos, NewPos: newPos})
}

// Connect creates an edge between two nodes. Connecting a reference
// node to a process node first clones the reference's snippets onto
// the target; the clones exist before the command does, and the
// recorded command suppresses clone restoration on its first apply.
func (e *Editor) Connect(ctx context.Context, sourceID, targetID string) (*entities.Edge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	source, ok := e.doc.Node(sourceID)
	if !ok {
		return nil, errors.NewNotFoundError("node " + sourceID)
	}
	target, ok := e.doc.Node(targetID)
	if !ok {
		return nil, errors.NewNotFoundError("node " + targetID)
	}
	edge := entities.NewEdge(sourceID, targetID)
	if err := edge.Validate(); err != nil {
		return nil, err
	}

	var cloneIDs []string
	if source.Kind == entities.NodeKindReference && target.Kind == entities.NodeKindProcess {
		for i := range source.Snippets {
			clone := source.Snippets[i].CloneFrom(source.DisplayTitle())
			if err := e.doc.InsertSnippet(targetID, -1, clone); err != nil {
				return nil, err
			}
			cloneIDs = append(cloneIDs, clone.ID)
		}
		if len(cloneIDs) > 0 {
			e.notify(aggregates.KindSnippet, targetID)
		}
	}

	if err := e.dispatch(ctx, ConnectIntent{Edge: edge, TargetNodeID: targetID, ClonedIDs: cloneIDs}); err != nil {
		for _, id := range cloneIDs {
			if rmErr := e.doc.RemoveSnippet(targetID, id); rmErr != nil {
				e.logger.Warn("clone rollback failed",
					zap.String("node_id", targetID),
					zap.String("snippet_id", id),
					zap.Error(rmErr))
			}
		}
		return nil, err
	}
	return edge.Clone(), nil
}

func (e *Editor) Disconnect(ctx context.Context, edgeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, DisconnectIntent{EdgeID: edgeID})
}

// AddGroup creates a group around the given member nodes.
func (e *Editor) AddGroup(ctx context.Context, name, color string, rect valueobjects.Rect, memberIDs []string) (*entities.Group, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := entities.NewGroup(name, rect)
	g.Color = color
	for _, id := range memberIDs {
		if _, ok := e.doc.Node(id); !ok {
			return nil, errors.NewNotFoundError("node " + id)
		}
		g.AddMember(id)
	}
	if err := e.dispatch(ctx, AddGroupIntent{Group: g}); err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

func (e *Editor) RemoveGroup(ctx context.Context, groupID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, RemoveGroupIntent{GroupID: groupID})
}

// MoveGroup finishes a group drag, moving every member node by the
// same delta. Like MoveNode, the document is updated before the
// command records the drag.
func (e *Editor) MoveGroup(ctx context.Context, groupID string, newPos valueobjects.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.doc.Group(groupID)
	if !ok {
		return errors.NewNotFoundError("group " + groupID)
	}
	if g.Locked {
		return errors.NewConflictError("group " + groupID + " is locked")
	}
	oldPos := g.Rect.Origin()
	memberPositions := make(map[string]valueobjects.Position, len(g.NodeIDs))
	for _, nodeID := range g.NodeIDs {
		if n, ok := e.doc.Node(nodeID); ok {
			memberPositions[nodeID] = n.Position
		}
	}

	if err := e.doc.SetGroupPosition(groupID, newPos); err != nil {
		return err
	}
	dx, dy := newPos.Delta(oldPos)
	for nodeID, pos := range memberPositions {
		if err := e.doc.SetNodePosition(nodeID, pos.Translate(dx, dy)); err != nil {
			return errors.Wrapf(err, "move group %s member", groupID)
		}
	}
	e.notify(aggregates.KindGroup, groupID)

	return e.dispatch(ctx, MoveGroupIntent{
		GroupID:         groupID,
		OldPos:          oldPos,
		NewPos:          newPos,
		MemberPositions: memberPositions,
	})
}

func (e *Editor) ResizeGroup(ctx context.Context, groupID string, newRect valueobjects.Rect) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, ResizeGroupIntent{GroupID: groupID, NewRect: newRect})
}

func (e *Editor) RenameGroup(ctx context.Context, groupID, newName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, RenameGroupIntent{GroupID: groupID, NewName: newName})
}

// ReparentNode moves a node into another group, or out of any group
// when newGroupID is empty.
func (e *Editor) ReparentNode(ctx context.Context, nodeID, newGroupID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, ReparentNodeIntent{NodeID: nodeID, NewGroupID: newGroupID})
}

func (e *Editor) ToggleNodeTag(ctx context.Context, nodeID, tag string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, ToggleNodeTagIntent{NodeID: nodeID, Tag: tag})
}

func (e *Editor) ToggleNodeFlag(ctx context.Context, nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, ToggleNodeFlagIntent{NodeID: nodeID})
}

func (e *Editor) ToggleLock(ctx context.Context, entityID string, isGroup bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, ToggleLockIntent{EntityID: entityID, IsGroup: isGroup})
}

func (e *Editor) EditNodeMetadata(ctx context.Context, nodeID, field, newValue string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, EditNodeMetadataIntent{NodeID: nodeID, Field: field, NewValue: newValue})
}

// AddSnippet appends a snippet to a node and returns its snapshot.
func (e *Editor) AddSnippet(ctx context.Context, nodeID string, kind entities.SnippetKind, content string) (*entities.Snippet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var s entities.Snippet
	switch kind {
	case entities.SnippetKindImage:
		s = entities.NewImageSnippet(content)
	default:
		s = entities.NewTextSnippet(content)
	}
	if err := e.dispatch(ctx, AddSnippetIntent{NodeID: nodeID, Snippet: &s}); err != nil {
		return nil, err
	}
	out := s
	return &out, nil
}

func (e *Editor) RemoveSnippet(ctx context.Context, nodeID, snippetID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, RemoveSnippetIntent{NodeID: nodeID, SnippetID: snippetID})
}

func (e *Editor) EditSnippet(ctx context.Context, nodeID, snippetID, field, newValue string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, EditSnippetIntent{NodeID: nodeID, SnippetID: snippetID, Field: field, NewValue: newValue})
}

func (e *Editor) MoveSnippet(ctx context.Context, nodeID, snippetID string, from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, MoveSnippetIntent{NodeID: nodeID, SnippetID: snippetID, From: from, To: to})
}

func (e *Editor) AddTag(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, AddTagIntent{Name: name})
}

func (e *Editor) RemoveTag(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, RemoveTagIntent{Name: name})
}

func (e *Editor) RenameTag(ctx context.Context, oldName, newName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, RenameTagIntent{OldName: oldName, NewName: newName})
}

func (e *Editor) RecolorTag(ctx context.Context, name, color string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, RecolorTagIntent{Name: name, Color: color})
}

func (e *Editor) MoveTag(ctx context.Context, from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, MoveTagIntent{From: from, To: to})
}

func (e *Editor) AddTodo(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, AddTodoIntent{Text: text})
}

func (e *Editor) RemoveTodo(ctx context.Context, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, RemoveTodoIntent{Index: index})
}

func (e *Editor) EditTodo(ctx context.Context, index int, newText string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, EditTodoIntent{Index: index, NewText: newText})
}

func (e *Editor) ToggleTodo(ctx context.Context, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, ToggleTodoIntent{Index: index})
}

func (e *Editor) MoveTodo(ctx context.Context, from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, MoveTodoIntent{From: from, To: to})
}

func (e *Editor) SetDescription(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, EditDescriptionIntent{NewText: text})
}

func (e *Editor) SetEdgeColors(ctx context.Context, pipeline, reference string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, SetEdgeColorsIntent{PipelineColor: pipeline, ReferenceColor: reference})
}

func (e *Editor) SetModuleColor(ctx context.Context, moduleType, color string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch(ctx, SetModuleColorIntent{ModuleType: moduleType, Color: color})
}

// --- History control ---

func (e *Editor) Undo(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Undo(ctx)
}

func (e *Editor) Redo(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Redo(ctx)
}

// --- Project lifecycle ---

// OpenProject restores the persisted document snapshot, then loads the
// history sidecar. Restoration never records commands; history only
// loads once the snapshot the commands were written against is in
// place.
func (e *Editor) OpenProject(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot, err := e.projects.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "open project")
	}
	e.doc.Restore(snapshot)
	if err := e.history.Load(ctx); err != nil {
		return errors.Wrap(err, "load edit history")
	}
	e.notify(aggregates.KindProject, "")
	return nil
}

// SaveProject persists the current document snapshot.
func (e *Editor) SaveProject(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projects.Save(ctx, e.doc.Snapshot())
}

// Snapshot returns the full document state for the rendering surface.
func (e *Editor) Snapshot() aggregates.ProjectSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Snapshot()
}
