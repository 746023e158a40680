package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
	pkgerrors "researchflow-backend/pkg/errors"
)

type recordedOp struct {
	name  string
	kind  aggregates.EntityKind
	ref   aggregates.EntityRef
	snap  aggregates.Snapshot
	field string
	value interface{}
}

// fakeMutator records every mutation a command performs.
type fakeMutator struct {
	ops      []recordedOp
	snippets map[string]entities.Snippet
}

func (f *fakeMutator) InsertEntity(kind aggregates.EntityKind, snap aggregates.Snapshot) error {
	f.ops = append(f.ops, recordedOp{name: "insert", kind: kind, snap: snap})
	return nil
}

func (f *fakeMutator) RemoveEntity(kind aggregates.EntityKind, ref aggregates.EntityRef) error {
	f.ops = append(f.ops, recordedOp{name: "remove", kind: kind, ref: ref})
	return nil
}

func (f *fakeMutator) SetField(kind aggregates.EntityKind, ref aggregates.EntityRef, field string, value interface{}) error {
	f.ops = append(f.ops, recordedOp{name: "set", kind: kind, ref: ref, field: field, value: value})
	return nil
}

func (f *fakeMutator) Reorder(kind aggregates.EntityKind, containerID string, from, to int) error {
	f.ops = append(f.ops, recordedOp{name: "reorder", kind: kind, ref: aggregates.EntityRef{ID: containerID, Index: from}, value: to})
	return nil
}

func (f *fakeMutator) LookupSnippet(nodeID, snippetID string) (entities.Snippet, bool) {
	s, ok := f.snippets[snippetID]
	return s, ok
}

func (f *fakeMutator) byName(name string) []recordedOp {
	var out []recordedOp
	for _, o := range f.ops {
		if o.name == name {
			out = append(out, o)
		}
	}
	return out
}

func TestDescriptionChange_MergesInsideWindow(t *testing.T) {
	first := NewDescriptionChange("", "h")
	second := NewDescriptionChange("h", "he")

	require.True(t, first.CanMergeWith(second))
	first.MergeWith(second)

	assert.Equal(t, "", first.OldValue)
	assert.Equal(t, "he", first.NewValue)
}

func TestDescriptionChange_WindowExpires(t *testing.T) {
	first := NewDescriptionChange("", "h")
	first.mergedAt = time.Now().Add(-4 * time.Second)

	assert.False(t, first.CanMergeWith(NewDescriptionChange("h", "he")))
}

func TestDescriptionChange_NeverMergesAfterReload(t *testing.T) {
	data, err := Marshal(NewDescriptionChange("", "hello"))
	require.NoError(t, err)

	reloaded, err := Unmarshal(data)
	require.NoError(t, err)

	dc, ok := reloaded.(*DescriptionChange)
	require.True(t, ok)
	assert.False(t, dc.CanMergeWith(NewDescriptionChange("hello", "hello!")))
}

func TestDescriptionChange_RejectsOtherKinds(t *testing.T) {
	first := NewDescriptionChange("", "h")
	assert.False(t, first.CanMergeWith(&TodoAdd{Text: "x"}))
}

func TestCodec_RoundTrip(t *testing.T) {
	nodeID := valueobjects.NewID()
	node := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(10, 20))
	edge := entities.NewEdge(nodeID, node.ID)

	cases := []Command{
		NewDescriptionChange("old", "new"),
		&TodoAdd{Text: "write tests", Index: 2},
		&TodoRemove{Index: 1, Text: "done item", Done: true},
		&TagRename{OldName: "draft", NewName: "wip"},
		&NodePosition{NodeID: nodeID, OldPos: valueobjects.NewPosition(0, 0), NewPos: valueobjects.NewPosition(5, 5)},
		&AddNode{Node: node},
		&RemoveNode{Node: node, Edges: []entities.Edge{*edge}},
		&RemoveEdge{Edge: edge},
		&GroupMove{GroupID: valueobjects.NewID(), OldPos: valueobjects.NewPosition(0, 0), NewPos: valueobjects.NewPosition(30, 40),
			MemberPositions: map[string]valueobjects.Position{nodeID: valueobjects.NewPosition(1, 2)}},
		&NodeLockToggle{EntityID: valueobjects.NewID(), NewState: true, IsGroup: true},
		&SnippetRemove{NodeID: nodeID, Snippet: &entities.Snippet{ID: valueobjects.NewID(), Kind: entities.SnippetKindText, Content: "quote"}, Index: 1},
		&ModulePaletteColorChange{ModuleType: "loader", OldColor: "#111111", NewColor: "#222222"},
	}

	for _, cmd := range cases {
		t.Run(cmd.Kind(), func(t *testing.T) {
			data, err := Marshal(cmd)
			require.NoError(t, err)
			assert.Contains(t, string(data), `"type":"`+cmd.Kind()+`"`)

			decoded, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, cmd.Kind(), decoded.Kind())

			again, err := Marshal(decoded)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestCodec_UnknownType(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"TimeTravel"}`))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMalformed(err))
}

func TestCodec_MissingRequiredSnapshot(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"AddNode"}`))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMalformed(err))
}

func TestCodec_InvalidJSON(t *testing.T) {
	_, err := Unmarshal([]byte(`{`))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMalformed(err))
}

func TestNodePosition_FirstApplySuppressed(t *testing.T) {
	m := &fakeMutator{}
	cmd := NewNodePosition("n1", valueobjects.NewPosition(0, 0), valueobjects.NewPosition(10, 10))

	require.NoError(t, cmd.Apply(m))
	assert.Empty(t, m.ops, "drag already moved the node")

	require.NoError(t, cmd.Apply(m))
	require.Len(t, m.ops, 1)
	assert.Equal(t, valueobjects.NewPosition(10, 10), m.ops[0].value)

	require.NoError(t, cmd.Revert(m))
	require.Len(t, m.ops, 2)
	assert.Equal(t, valueobjects.NewPosition(0, 0), m.ops[1].value)
}

func TestNodePosition_ReloadedAlwaysApplies(t *testing.T) {
	data, err := Marshal(NewNodePosition("n1", valueobjects.NewPosition(0, 0), valueobjects.NewPosition(10, 10)))
	require.NoError(t, err)
	reloaded, err := Unmarshal(data)
	require.NoError(t, err)

	m := &fakeMutator{}
	require.NoError(t, reloaded.Apply(m))
	assert.Len(t, m.ops, 1, "suppression must not survive serialization")
}

func TestGroupMove_MovesMembersByDelta(t *testing.T) {
	m := &fakeMutator{}
	cmd := NewGroupMove("g1",
		valueobjects.NewPosition(0, 0),
		valueobjects.NewPosition(100, 50),
		map[string]valueobjects.Position{"n1": valueobjects.NewPosition(10, 10)})

	require.NoError(t, cmd.Apply(m))
	assert.Empty(t, m.ops)

	require.NoError(t, cmd.Apply(m))
	sets := m.byName("set")
	require.Len(t, sets, 2)
	assert.Equal(t, valueobjects.NewPosition(100, 50), sets[0].value)
	assert.Equal(t, valueobjects.NewPosition(110, 60), sets[1].value)

	require.NoError(t, cmd.Revert(m))
	sets = m.byName("set")
	require.Len(t, sets, 4)
	assert.Equal(t, valueobjects.NewPosition(0, 0), sets[2].value)
	assert.Equal(t, valueobjects.NewPosition(10, 10), sets[3].value)
}

func TestAddEdge_CapturesClonesOnFirstUndo(t *testing.T) {
	edge := entities.NewEdge("ref", "proc")
	clone := entities.Snippet{ID: valueobjects.NewID(), Kind: entities.SnippetKindText, Content: "finding", SourceLabel: "From: Paper"}
	m := &fakeMutator{snippets: map[string]entities.Snippet{clone.ID: clone}}

	cmd := NewAddEdge(edge, "proc", []string{clone.ID})

	// First apply: the connect already cloned the snippet.
	require.NoError(t, cmd.Apply(m))
	inserts := m.byName("insert")
	require.Len(t, inserts, 1)
	assert.Equal(t, aggregates.KindEdge, inserts[0].kind)

	// First undo captures the clone content before removing it.
	require.NoError(t, cmd.Revert(m))
	require.Len(t, cmd.ClonedSnippets, 1)
	assert.Equal(t, "finding", cmd.ClonedSnippets[0].Content)
	removes := m.byName("remove")
	require.Len(t, removes, 2)

	// Redo replays the captured clone verbatim, same id.
	require.NoError(t, cmd.Apply(m))
	inserts = m.byName("insert")
	require.Len(t, inserts, 3)
	assert.Equal(t, clone.ID, inserts[2].snap.Snippet.ID)
	assert.Equal(t, "proc", inserts[2].snap.Owner)
}

func TestAddEdge_ReloadedRestoresClonesOnApply(t *testing.T) {
	edge := entities.NewEdge("ref", "proc")
	clone := entities.Snippet{ID: valueobjects.NewID(), Kind: entities.SnippetKindText, Content: "finding"}
	cmd := &AddEdge{Edge: edge, TargetNodeID: "proc", ClonedIDs: []string{clone.ID}, ClonedSnippets: []entities.Snippet{clone}}

	data, err := Marshal(cmd)
	require.NoError(t, err)
	reloaded, err := Unmarshal(data)
	require.NoError(t, err)

	m := &fakeMutator{}
	require.NoError(t, reloaded.Apply(m))
	inserts := m.byName("insert")
	require.Len(t, inserts, 2, "reloaded connect restores the edge and the clone")
}

func TestRemoveNode_RevertRestoresEdges(t *testing.T) {
	node := entities.NewNode(entities.NodeKindProcess, valueobjects.NewPosition(0, 0))
	e1 := entities.NewEdge(node.ID, "a")
	e2 := entities.NewEdge("b", node.ID)
	cmd := &RemoveNode{Node: node, Edges: []entities.Edge{*e1, *e2}}

	m := &fakeMutator{}
	require.NoError(t, cmd.Apply(m))
	require.Len(t, m.byName("remove"), 1)

	require.NoError(t, cmd.Revert(m))
	inserts := m.byName("insert")
	require.Len(t, inserts, 3)
	assert.Equal(t, aggregates.KindNode, inserts[0].kind)
	assert.Equal(t, aggregates.KindEdge, inserts[1].kind)
	assert.Equal(t, aggregates.KindEdge, inserts[2].kind)
}

func TestNodeTagToggle_Symmetry(t *testing.T) {
	m := &fakeMutator{}
	add := &NodeTagToggle{NodeID: "n1", Tag: "core", Added: true}

	require.NoError(t, add.Apply(m))
	require.NoError(t, add.Revert(m))

	require.Len(t, m.ops, 2)
	assert.Equal(t, "insert", m.ops[0].name)
	assert.Equal(t, "remove", m.ops[1].name)
	assert.Equal(t, "n1", m.ops[0].snap.Owner)
}
