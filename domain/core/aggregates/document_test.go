package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
)

func TestDocument_RemoveNode_CascadesEdgesAndMembership(t *testing.T) {
	doc := NewDocument()
	n1 := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(0, 0))
	n2 := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(100, 0))
	n3 := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(200, 0))
	require.NoError(t, doc.InsertNode(n1))
	require.NoError(t, doc.InsertNode(n2))
	require.NoError(t, doc.InsertNode(n3))

	e1 := entities.NewEdge(n1.ID, n2.ID)
	e2 := entities.NewEdge(n2.ID, n3.ID)
	require.NoError(t, doc.InsertEdge(e1))
	require.NoError(t, doc.InsertEdge(e2))

	g := entities.NewGroup("stage", valueobjects.Rect{Width: 400, Height: 200})
	g.AddMember(n2.ID)
	require.NoError(t, doc.InsertGroup(g))

	require.NoError(t, doc.RemoveNode(n2.ID))

	_, found := doc.Node(n2.ID)
	assert.False(t, found)
	assert.Empty(t, doc.Edges(), "both incident edges should be gone")

	got, found := doc.Group(g.ID)
	require.True(t, found)
	assert.False(t, got.HasMember(n2.ID))
}

func TestDocument_InsertNode_ReplacesExistingID(t *testing.T) {
	doc := NewDocument()
	n := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(0, 0))
	require.NoError(t, doc.InsertNode(n))

	moved := n.Clone()
	moved.Position = valueobjects.NewPosition(50, 50)
	require.NoError(t, doc.InsertNode(moved))

	assert.Equal(t, 1, doc.NodeCount())
	got, _ := doc.Node(n.ID)
	assert.Equal(t, valueobjects.NewPosition(50, 50), got.Position)
}

func TestDocument_InsertEdge_EnforcesWaypointDegree(t *testing.T) {
	doc := NewDocument()
	a := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(0, 0))
	b := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(100, 0))
	wp := entities.NewNode(entities.NodeKindWaypoint, valueobjects.NewPosition(50, 0))
	require.NoError(t, doc.InsertNode(a))
	require.NoError(t, doc.InsertNode(b))
	require.NoError(t, doc.InsertNode(wp))

	require.NoError(t, doc.InsertEdge(entities.NewEdge(a.ID, wp.ID)))
	require.NoError(t, doc.InsertEdge(entities.NewEdge(wp.ID, b.ID)))

	err := doc.InsertEdge(entities.NewEdge(b.ID, wp.ID))
	assert.Error(t, err, "waypoint already has an incoming edge")

	err = doc.InsertEdge(entities.NewEdge(wp.ID, a.ID))
	assert.Error(t, err, "waypoint already has an outgoing edge")
}

func TestDocument_InsertSnippet_OrderAndReplace(t *testing.T) {
	doc := NewDocument()
	n := entities.NewNode(entities.NodeKindReference, valueobjects.NewPosition(0, 0))
	require.NoError(t, doc.InsertNode(n))

	s1 := entities.NewTextSnippet("first")
	s2 := entities.NewTextSnippet("second")
	s3 := entities.NewTextSnippet("inserted")
	require.NoError(t, doc.InsertSnippet(n.ID, -1, s1))
	require.NoError(t, doc.InsertSnippet(n.ID, -1, s2))
	require.NoError(t, doc.InsertSnippet(n.ID, 1, s3))

	got, _ := doc.Node(n.ID)
	require.Len(t, got.Snippets, 3)
	assert.Equal(t, "inserted", got.Snippets[1].Content)

	// Re-inserting an existing id replaces in place.
	edited := s3
	edited.Content = "edited"
	require.NoError(t, doc.InsertSnippet(n.ID, -1, edited))
	got, _ = doc.Node(n.ID)
	require.Len(t, got.Snippets, 3)
	assert.Equal(t, "edited", got.Snippets[1].Content)
}

func TestDocument_RenameTag_PropagatesToNodes(t *testing.T) {
	doc := NewDocument()
	n := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(0, 0))
	n.AddTag("draft")
	require.NoError(t, doc.InsertNode(n))
	require.NoError(t, doc.InsertTag(-1, entities.Tag{Name: "draft", Color: "#FF0000"}))

	require.NoError(t, doc.RenameTag("draft", "wip"))

	got, _ := doc.Node(n.ID)
	assert.True(t, got.HasTag("wip"))
	assert.False(t, got.HasTag("draft"))
	assert.Equal(t, 0, doc.TagIndex("wip"))
}

func TestDocument_AddGroupMember_MovesBetweenGroups(t *testing.T) {
	doc := NewDocument()
	n := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(0, 0))
	require.NoError(t, doc.InsertNode(n))
	g1 := entities.NewGroup("one", valueobjects.Rect{Width: 100, Height: 100})
	g2 := entities.NewGroup("two", valueobjects.Rect{Width: 100, Height: 100})
	require.NoError(t, doc.InsertGroup(g1))
	require.NoError(t, doc.InsertGroup(g2))

	require.NoError(t, doc.AddGroupMember(g1.ID, n.ID))
	require.NoError(t, doc.AddGroupMember(g2.ID, n.ID))

	owner, found := doc.GroupOf(n.ID)
	require.True(t, found)
	assert.Equal(t, g2.ID, owner)
}

func TestDocument_MoveTodo(t *testing.T) {
	doc := NewDocument()
	for _, text := range []string{"a", "b", "c"} {
		require.NoError(t, doc.InsertTodo(-1, entities.Todo{Text: text}))
	}

	require.NoError(t, doc.MoveTodo(0, 2))

	todos := doc.Todos()
	assert.Equal(t, []string{"b", "c", "a"}, []string{todos[0].Text, todos[1].Text, todos[2].Text})

	assert.Error(t, doc.MoveTodo(0, 5))
}

func TestDocument_SnapshotRestore_RoundTrip(t *testing.T) {
	doc := NewDocument()
	n1 := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(10, 20))
	n1.Metadata.ModuleName = "loader"
	n2 := entities.NewNode(entities.NodeKindReference, valueobjects.NewPosition(30, 40))
	require.NoError(t, doc.InsertNode(n1))
	require.NoError(t, doc.InsertNode(n2))
	require.NoError(t, doc.InsertEdge(entities.NewEdge(n1.ID, n2.ID)))
	require.NoError(t, doc.InsertTag(-1, entities.Tag{Name: "core", Color: "#00FF00"}))
	require.NoError(t, doc.InsertTodo(-1, entities.Todo{Text: "review", Done: true}))
	doc.SetDescription("pipeline sketch")
	doc.SetModuleColor("loader", "#123456")

	restored := NewDocument()
	restored.Restore(doc.Snapshot())

	assert.Equal(t, doc.Snapshot(), restored.Snapshot())
	assert.Equal(t, "pipeline sketch", restored.Description())
	assert.Equal(t, "#123456", restored.Palette().ModuleColors["loader"])
}

func TestDocument_Restore_DropsInvalidEntries(t *testing.T) {
	n := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(0, 0))
	snap := ProjectSnapshot{
		Nodes: []entities.Node{*n, {ID: "", Kind: "bogus"}},
		Edges: []entities.Edge{*entities.NewEdge(n.ID, "other"), {ID: ""}},
	}

	restored := NewDocument()
	restored.Restore(snap)

	assert.Equal(t, 1, restored.NodeCount())
}
