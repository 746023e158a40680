package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
	"researchflow-backend/infrastructure/persistence/memory"
	pkgerrors "researchflow-backend/pkg/errors"
)

func newTestEditor(t *testing.T) (*Editor, *memory.HistoryStore, *memory.ProjectStore) {
	t.Helper()
	hist := memory.NewHistoryStore()
	proj := memory.NewProjectStore()
	e := NewEditor(aggregates.NewDocument(), hist, proj, zap.NewNop(), nil)
	_, err := NewController(e, zap.NewNop())
	require.NoError(t, err)
	return e, hist, proj
}

func TestEditor_ConnectClonesSnippetsAndSurvivesUndoRedo(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	proc, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(0, 0),
		entities.Metadata{ModuleName: "loader", ModuleType: "loader"})
	require.NoError(t, err)
	ref, err := e.AddNode(ctx, entities.NodeKindReference, valueobjects.NewPosition(200, 0),
		entities.Metadata{Title: "Attention Is All You Need", Year: "2017"})
	require.NoError(t, err)

	_, err = e.AddSnippet(ctx, ref.ID, entities.SnippetKindText, "multi-head attention")
	require.NoError(t, err)
	_, err = e.AddSnippet(ctx, ref.ID, entities.SnippetKindText, "positional encoding")
	require.NoError(t, err)

	edge, err := e.Connect(ctx, ref.ID, proc.ID)
	require.NoError(t, err)

	target, ok := e.doc.Node(proc.ID)
	require.True(t, ok)
	require.Len(t, target.Snippets, 2)
	assert.Equal(t, "multi-head attention", target.Snippets[0].Content)
	assert.Equal(t, "From: Attention Is All You Need", target.Snippets[0].SourceLabel)
	assert.Equal(t, "From: Attention Is All You Need", target.Snippets[1].SourceLabel)

	cloneIDs := []string{target.Snippets[0].ID, target.Snippets[1].ID}

	require.True(t, e.Undo(ctx))
	_, ok = e.doc.Edge(edge.ID)
	assert.False(t, ok)
	target, _ = e.doc.Node(proc.ID)
	assert.Empty(t, target.Snippets)

	require.True(t, e.Redo(ctx))
	_, ok = e.doc.Edge(edge.ID)
	assert.True(t, ok)
	target, _ = e.doc.Node(proc.ID)
	require.Len(t, target.Snippets, 2)
	assert.Equal(t, cloneIDs[0], target.Snippets[0].ID)
	assert.Equal(t, cloneIDs[1], target.Snippets[1].ID)
	assert.Equal(t, "positional encoding", target.Snippets[1].Content)
}

func TestEditor_ConnectWithoutCloning(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	a, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(0, 0), entities.Metadata{ModuleName: "a"})
	require.NoError(t, err)
	b, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(100, 0), entities.Metadata{ModuleName: "b"})
	require.NoError(t, err)

	_, err = e.Connect(ctx, a.ID, b.ID)
	require.NoError(t, err)

	target, _ := e.doc.Node(b.ID)
	assert.Empty(t, target.Snippets, "process to process connects never clone")
}

func TestEditor_ConnectUnknownNode(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	a, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(0, 0), entities.Metadata{})
	require.NoError(t, err)

	_, err = e.Connect(ctx, a.ID, valueobjects.NewID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestEditor_MoveNode_RecordsOnceAndUndoes(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	n, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(0, 0), entities.Metadata{})
	require.NoError(t, err)

	require.NoError(t, e.MoveNode(ctx, n.ID, valueobjects.NewPosition(50, 60)))
	got, _ := e.doc.Node(n.ID)
	assert.True(t, got.Position.Equals(valueobjects.NewPosition(50, 60)))

	require.True(t, e.Undo(ctx))
	got, _ = e.doc.Node(n.ID)
	assert.True(t, got.Position.Equals(valueobjects.NewPosition(0, 0)))

	require.True(t, e.Redo(ctx))
	got, _ = e.doc.Node(n.ID)
	assert.True(t, got.Position.Equals(valueobjects.NewPosition(50, 60)))
}

func TestEditor_MoveNode_LockedRejected(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	n, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(0, 0), entities.Metadata{})
	require.NoError(t, err)
	require.NoError(t, e.ToggleLock(ctx, n.ID, false))

	err = e.MoveNode(ctx, n.ID, valueobjects.NewPosition(50, 60))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	got, _ := e.doc.Node(n.ID)
	assert.True(t, got.Position.Equals(valueobjects.NewPosition(0, 0)))
}

func TestEditor_MoveNode_SamePositionRecordsNothing(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	n, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(5, 5), entities.Metadata{})
	require.NoError(t, err)
	before, _ := e.history.Depths()

	require.NoError(t, e.MoveNode(ctx, n.ID, valueobjects.NewPosition(5, 5)))

	after, _ := e.history.Depths()
	assert.Equal(t, before, after)
}

func TestEditor_MoveGroup_MembersFollow(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	n1, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(10, 10), entities.Metadata{})
	require.NoError(t, err)
	n2, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(40, 20), entities.Metadata{})
	require.NoError(t, err)

	g, err := e.AddGroup(ctx, "stage one", "#aabbcc",
		valueobjects.Rect{X: 0, Y: 0, Width: 100, Height: 80}, []string{n1.ID, n2.ID})
	require.NoError(t, err)

	require.NoError(t, e.MoveGroup(ctx, g.ID, valueobjects.NewPosition(100, 50)))

	got, _ := e.doc.Group(g.ID)
	assert.True(t, got.Rect.Origin().Equals(valueobjects.NewPosition(100, 50)))
	m1, _ := e.doc.Node(n1.ID)
	assert.True(t, m1.Position.Equals(valueobjects.NewPosition(110, 60)))
	m2, _ := e.doc.Node(n2.ID)
	assert.True(t, m2.Position.Equals(valueobjects.NewPosition(140, 70)))

	require.True(t, e.Undo(ctx))
	m1, _ = e.doc.Node(n1.ID)
	assert.True(t, m1.Position.Equals(valueobjects.NewPosition(10, 10)))
	got, _ = e.doc.Group(g.ID)
	assert.True(t, got.Rect.Origin().Equals(valueobjects.NewPosition(0, 0)))

	require.True(t, e.Redo(ctx))
	m2, _ = e.doc.Node(n2.ID)
	assert.True(t, m2.Position.Equals(valueobjects.NewPosition(140, 70)))
}

func TestEditor_MoveGroup_LockedRejected(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	g, err := e.AddGroup(ctx, "frozen", "#aabbcc",
		valueobjects.Rect{X: 0, Y: 0, Width: 50, Height: 50}, nil)
	require.NoError(t, err)
	require.NoError(t, e.ToggleLock(ctx, g.ID, true))

	err = e.MoveGroup(ctx, g.ID, valueobjects.NewPosition(10, 10))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestEditor_RemoveNode_UndoRestoresEdges(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	a, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(0, 0), entities.Metadata{})
	require.NoError(t, err)
	b, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(100, 0), entities.Metadata{})
	require.NoError(t, err)
	edge, err := e.Connect(ctx, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, e.RemoveNode(ctx, a.ID))
	_, ok := e.doc.Node(a.ID)
	assert.False(t, ok)
	_, ok = e.doc.Edge(edge.ID)
	assert.False(t, ok)

	require.True(t, e.Undo(ctx))
	_, ok = e.doc.Node(a.ID)
	assert.True(t, ok)
	_, ok = e.doc.Edge(edge.ID)
	assert.True(t, ok)
}

func TestEditor_ReparentNode(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	n, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(0, 0), entities.Metadata{})
	require.NoError(t, err)
	g1, err := e.AddGroup(ctx, "one", "#111111", valueobjects.Rect{Width: 50, Height: 50}, []string{n.ID})
	require.NoError(t, err)
	g2, err := e.AddGroup(ctx, "two", "#222222", valueobjects.Rect{X: 100, Width: 50, Height: 50}, nil)
	require.NoError(t, err)

	require.NoError(t, e.ReparentNode(ctx, n.ID, g2.ID))
	owner, ok := e.doc.GroupOf(n.ID)
	require.True(t, ok)
	assert.Equal(t, g2.ID, owner)

	require.True(t, e.Undo(ctx))
	owner, ok = e.doc.GroupOf(n.ID)
	require.True(t, ok)
	assert.Equal(t, g1.ID, owner)
}

func TestEditor_TagLifecycle(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	require.NoError(t, e.AddTag(ctx, "draft"))
	err := e.AddTag(ctx, "draft")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	n, err := e.AddNode(ctx, entities.NodeKindReference, valueobjects.NewPosition(0, 0), entities.Metadata{Title: "p"})
	require.NoError(t, err)
	require.NoError(t, e.ToggleNodeTag(ctx, n.ID, "draft"))

	require.NoError(t, e.RenameTag(ctx, "draft", "wip"))
	got, _ := e.doc.Node(n.ID)
	assert.True(t, got.HasTag("wip"))
	assert.False(t, got.HasTag("draft"))

	require.True(t, e.Undo(ctx))
	got, _ = e.doc.Node(n.ID)
	assert.True(t, got.HasTag("draft"))
}

func TestEditor_TodoLifecycle(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	require.NoError(t, e.AddTodo(ctx, "read the paper"))
	require.NoError(t, e.AddTodo(ctx, "run the baseline"))
	require.NoError(t, e.ToggleTodo(ctx, 0))
	require.NoError(t, e.MoveTodo(ctx, 0, 1))

	todos := e.doc.Todos()
	require.Len(t, todos, 2)
	assert.Equal(t, "run the baseline", todos[0].Text)
	assert.Equal(t, "read the paper", todos[1].Text)
	assert.True(t, todos[1].Done)

	require.True(t, e.Undo(ctx))
	todos = e.doc.Todos()
	assert.Equal(t, "read the paper", todos[0].Text)

	require.True(t, e.Undo(ctx))
	todos = e.doc.Todos()
	assert.False(t, todos[0].Done)
}

func TestEditor_DescriptionEditsCollapse(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	require.NoError(t, e.SetDescription(ctx, "Tr"))
	require.NoError(t, e.SetDescription(ctx, "Transformer study"))

	undo, _ := e.history.Depths()
	assert.Equal(t, 1, undo)

	require.True(t, e.Undo(ctx))
	assert.Equal(t, "", e.doc.Description())

	require.True(t, e.Redo(ctx))
	assert.Equal(t, "Transformer study", e.doc.Description())
}

func TestEditor_ValidationRejectsBadIntent(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	err := e.RemoveNode(ctx, "not-a-uuid")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "uuid4", appErr.Details["NodeID"])

	err = e.RecolorTag(ctx, "draft", "blue")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestEditor_UnregisteredIntent(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(aggregates.NewDocument(), memory.NewHistoryStore(), memory.NewProjectStore(), zap.NewNop(), nil)

	err := e.AddTodo(ctx, "orphan")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnhandled))
}

func TestEditor_ChangeEvents(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	var events []ChangeEvent
	e.Subscribe(func(ev ChangeEvent) { events = append(events, ev) })

	n, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(0, 0), entities.Metadata{})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, aggregates.KindNode, events[0].Kind)
	assert.Equal(t, n.ID, events[0].ID)
}

func TestEditor_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, hist, proj := newTestEditor(t)

	proc, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(0, 0), entities.Metadata{ModuleName: "train"})
	require.NoError(t, err)
	ref, err := e.AddNode(ctx, entities.NodeKindReference, valueobjects.NewPosition(300, 0), entities.Metadata{Title: "BERT"})
	require.NoError(t, err)
	eval, err := e.AddNode(ctx, entities.NodeKindProcess, valueobjects.NewPosition(600, 0), entities.Metadata{ModuleName: "eval"})
	require.NoError(t, err)
	_, err = e.AddSnippet(ctx, ref.ID, entities.SnippetKindText, "masked language modeling")
	require.NoError(t, err)
	_, err = e.Connect(ctx, ref.ID, proc.ID)
	require.NoError(t, err)
	require.NoError(t, e.AddTag(ctx, "core"))
	require.NoError(t, e.ToggleNodeTag(ctx, ref.ID, "core"))
	require.NoError(t, e.ToggleNodeFlag(ctx, ref.ID))
	require.NoError(t, e.AddTodo(ctx, "compare runs"))
	require.NoError(t, e.AddTodo(ctx, "write summary"))
	require.NoError(t, e.ToggleTodo(ctx, 0))
	require.NoError(t, e.EditTodo(ctx, 1, "write the summary"))
	require.NoError(t, e.SetDescription(ctx, "pretraining survey"))
	require.NoError(t, e.MoveNode(ctx, proc.ID, valueobjects.NewPosition(80, 40)))
	g1, err := e.AddGroup(ctx, "stage one", "#aabbcc",
		valueobjects.Rect{X: 0, Y: 0, Width: 200, Height: 120}, []string{proc.ID, eval.ID})
	require.NoError(t, err)
	g2, err := e.AddGroup(ctx, "stage two", "#ccbbaa",
		valueobjects.Rect{X: 400, Y: 0, Width: 200, Height: 120}, nil)
	require.NoError(t, err)
	require.NoError(t, e.ReparentNode(ctx, eval.ID, g2.ID))
	require.NoError(t, e.RenameGroup(ctx, g1.ID, "pretraining"))
	require.NoError(t, e.MoveGroup(ctx, g1.ID, valueobjects.NewPosition(100, 50)))
	require.NoError(t, e.SetEdgeColors(ctx, "#ff0000", "#00ff00"))
	require.NoError(t, e.SetModuleColor(ctx, "train", "#123456"))
	require.NoError(t, e.RenameTag(ctx, "core", "method"))
	require.NoError(t, e.SaveProject(ctx))

	undoDepth, _ := e.history.Depths()
	require.Equal(t, 22, undoDepth)

	// A fresh editor over the same stores sees the same world.
	fresh := NewEditor(aggregates.NewDocument(), hist, proj, zap.NewNop(), nil)
	_, err = NewController(fresh, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, fresh.OpenProject(ctx))

	gotDepth, _ := fresh.history.Depths()
	assert.Equal(t, undoDepth, gotDepth)
	assert.Equal(t, "pretraining survey", fresh.doc.Description())
	n, ok := fresh.doc.Node(proc.ID)
	require.True(t, ok)
	// The group drag carried its remaining member along.
	assert.True(t, n.Position.Equals(valueobjects.NewPosition(180, 90)))
	require.Len(t, n.Snippets, 1)
	g, ok := fresh.doc.Group(g1.ID)
	require.True(t, ok)
	assert.Equal(t, "pretraining", g.Name)
	assert.True(t, g.Rect.Origin().Equals(valueobjects.NewPosition(100, 50)))
	gid, ok := fresh.doc.GroupOf(eval.ID)
	require.True(t, ok)
	assert.Equal(t, g2.ID, gid)
	todos := fresh.doc.Todos()
	require.Len(t, todos, 2)
	assert.True(t, todos[0].Done)
	assert.Equal(t, "write the summary", todos[1].Text)
	pal := fresh.doc.Palette()
	assert.Equal(t, "#ff0000", pal.PipelineEdgeColor)
	assert.Equal(t, "#00ff00", pal.ReferenceEdgeColor)
	assert.Equal(t, "#123456", pal.ModuleColors["train"])
	tags := fresh.doc.Tags()
	require.Len(t, tags, 1)
	assert.Equal(t, "method", tags[0].Name)

	// Reloaded history replays cleanly in both directions.
	steps := 0
	for fresh.Undo(ctx) {
		steps++
	}
	assert.Equal(t, gotDepth, steps)
	assert.Equal(t, "", fresh.doc.Description())
	assert.Equal(t, 0, fresh.doc.NodeCount())
	assert.Empty(t, fresh.doc.Groups())
	assert.Empty(t, fresh.doc.Todos())
	assert.Empty(t, fresh.doc.Tags())
	assert.Equal(t, entities.DefaultPipelineEdgeColor, fresh.doc.Palette().PipelineEdgeColor)

	for fresh.Redo(ctx) {
	}
	assert.Equal(t, "pretraining survey", fresh.doc.Description())
	n, ok = fresh.doc.Node(proc.ID)
	require.True(t, ok)
	assert.True(t, n.Position.Equals(valueobjects.NewPosition(180, 90)))
	require.Len(t, n.Snippets, 1)
	assert.Equal(t, "masked language modeling", n.Snippets[0].Content)
	g, ok = fresh.doc.Group(g1.ID)
	require.True(t, ok)
	assert.True(t, g.Rect.Origin().Equals(valueobjects.NewPosition(100, 50)))
	assert.Equal(t, "#123456", fresh.doc.Palette().ModuleColors["train"])
}

func TestEditor_EditSnippetUndo(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	n, err := e.AddNode(ctx, entities.NodeKindReference, valueobjects.NewPosition(0, 0), entities.Metadata{Title: "p"})
	require.NoError(t, err)
	s, err := e.AddSnippet(ctx, n.ID, entities.SnippetKindText, "draft text")
	require.NoError(t, err)

	require.NoError(t, e.EditSnippet(ctx, n.ID, s.ID, "content", "final text"))
	got, _ := e.doc.Node(n.ID)
	assert.Equal(t, "final text", got.Snippets[0].Content)

	require.True(t, e.Undo(ctx))
	got, _ = e.doc.Node(n.ID)
	assert.Equal(t, "draft text", got.Snippets[0].Content)
}

func TestEditor_MoveSnippetUsesDocumentOrder(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	n, err := e.AddNode(ctx, entities.NodeKindReference, valueobjects.NewPosition(0, 0), entities.Metadata{Title: "p"})
	require.NoError(t, err)
	s1, err := e.AddSnippet(ctx, n.ID, entities.SnippetKindText, "first")
	require.NoError(t, err)
	_, err = e.AddSnippet(ctx, n.ID, entities.SnippetKindText, "second")
	require.NoError(t, err)

	// Stale caller index: the document still finds the snippet at 0.
	require.NoError(t, e.MoveSnippet(ctx, n.ID, s1.ID, 1, 1))
	got, _ := e.doc.Node(n.ID)
	assert.Equal(t, "second", got.Snippets[0].Content)
	assert.Equal(t, "first", got.Snippets[1].Content)

	require.True(t, e.Undo(ctx))
	got, _ = e.doc.Node(n.ID)
	assert.Equal(t, "first", got.Snippets[0].Content)
}

func TestEditor_PaletteEdits(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEditor(t)

	require.NoError(t, e.SetEdgeColors(ctx, "#ff0000", "#00ff00"))
	p := e.doc.Palette()
	assert.Equal(t, "#ff0000", p.PipelineEdgeColor)
	assert.Equal(t, "#00ff00", p.ReferenceEdgeColor)

	require.NoError(t, e.SetModuleColor(ctx, "loader", "#123456"))
	assert.Equal(t, "#123456", e.doc.Palette().ModuleColors["loader"])

	require.True(t, e.Undo(ctx))
	assert.NotEqual(t, "#123456", e.doc.Palette().ModuleColors["loader"])
	require.True(t, e.Undo(ctx))
	p = e.doc.Palette()
	assert.NotEqual(t, "#ff0000", p.PipelineEdgeColor)
}
