package aggregates

import (
	"sort"

	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
	pkgerrors "researchflow-backend/pkg/errors"
)

// Document is the canonical id-indexed entity store for one project:
// nodes, edges, groups, the ordered global tag and todo lists, the
// project description and the color palette. It owns the primitive
// mutations and stays internally consistent, but has zero undo
// awareness; history lives entirely in the application layer.
//
// Primitive mutations are idempotent under re-application: inserting an
// entity whose id already exists replaces it in place, which lets
// persisted history tolerate double execution during load.
type Document struct {
	nodes       map[string]*entities.Node
	edges       map[string]*entities.Edge
	groups      map[string]*entities.Group
	tags        []entities.Tag
	todos       []entities.Todo
	description string
	palette     entities.Palette
}

// NewDocument creates an empty document with default palette colors
func NewDocument() *Document {
	return &Document{
		nodes:   make(map[string]*entities.Node),
		edges:   make(map[string]*entities.Edge),
		groups:  make(map[string]*entities.Group),
		palette: entities.NewPalette(),
	}
}

// --- Nodes ---

// Node returns a deep copy of the node with the given id
func (d *Document) Node(id string) (*entities.Node, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Nodes returns copies of all nodes, ordered by id
func (d *Document) Nodes() []*entities.Node {
	out := make([]*entities.Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NodeCount returns the number of nodes in the document
func (d *Document) NodeCount() int {
	return len(d.nodes)
}

// InsertNode inserts a node snapshot, replacing any node with the same id
func (d *Document) InsertNode(n *entities.Node) error {
	if n == nil {
		return pkgerrors.NewValidationError("node snapshot is nil")
	}
	if err := n.Validate(); err != nil {
		return err
	}
	d.nodes[n.ID] = n.Clone()
	return nil
}

// RemoveNode removes a node and, as a side effect, every incident edge.
// Deletion commands snapshot those edges at construction so undo can
// reinsert them.
func (d *Document) RemoveNode(id string) error {
	if _, ok := d.nodes[id]; !ok {
		return pkgerrors.NewNotFoundError("node " + id)
	}
	delete(d.nodes, id)
	for edgeID, e := range d.edges {
		if e.Touches(id) {
			delete(d.edges, edgeID)
		}
	}
	for _, g := range d.groups {
		g.RemoveMember(id)
	}
	return nil
}

// SetNodePosition moves a node
func (d *Document) SetNodePosition(id string, pos valueobjects.Position) error {
	n, ok := d.nodes[id]
	if !ok {
		return pkgerrors.NewNotFoundError("node " + id)
	}
	n.Position = pos
	return nil
}

// SetNodeLocked sets the node lock flag
func (d *Document) SetNodeLocked(id string, locked bool) error {
	n, ok := d.nodes[id]
	if !ok {
		return pkgerrors.NewNotFoundError("node " + id)
	}
	n.Locked = locked
	return nil
}

// SetNodeFlagged sets the node attention flag
func (d *Document) SetNodeFlagged(id string, flagged bool) error {
	n, ok := d.nodes[id]
	if !ok {
		return pkgerrors.NewNotFoundError("node " + id)
	}
	n.Flagged = flagged
	return nil
}

// SetNodeMetadataField sets one named metadata field on a node
func (d *Document) SetNodeMetadataField(id, field, value string) error {
	n, ok := d.nodes[id]
	if !ok {
		return pkgerrors.NewNotFoundError("node " + id)
	}
	if !n.Metadata.SetField(field, value) {
		return pkgerrors.NewValidationError("unknown metadata field '" + field + "'")
	}
	return nil
}

// ToggleNodeTag adds or removes a tag on a node
func (d *Document) ToggleNodeTag(id, tag string, add bool) error {
	n, ok := d.nodes[id]
	if !ok {
		return pkgerrors.NewNotFoundError("node " + id)
	}
	if add {
		n.AddTag(tag)
	} else {
		n.RemoveTag(tag)
	}
	return nil
}

// --- Edges ---

// Edge returns a copy of the edge with the given id
func (d *Document) Edge(id string) (*entities.Edge, bool) {
	e, ok := d.edges[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Edges returns copies of all edges, ordered by id
func (d *Document) Edges() []*entities.Edge {
	out := make([]*entities.Edge, 0, len(d.edges))
	for _, e := range d.edges {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EdgesOf returns copies of every edge incident to the given node id,
// ordered by id. Deletion commands use this to capture second-order
// casualties before the node goes away.
func (d *Document) EdgesOf(nodeID string) []entities.Edge {
	var out []entities.Edge
	for _, e := range d.edges {
		if e.Touches(nodeID) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InsertEdge inserts an edge snapshot, replacing any edge with the same
// id. Waypoint endpoints accept at most one incoming and one outgoing
// edge; a violating insert is rejected.
func (d *Document) InsertEdge(e *entities.Edge) error {
	if e == nil {
		return pkgerrors.NewValidationError("edge snapshot is nil")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := d.checkWaypointDegree(e); err != nil {
		return err
	}
	d.edges[e.ID] = e.Clone()
	return nil
}

func (d *Document) checkWaypointDegree(e *entities.Edge) error {
	if d.isWaypoint(e.SourceID) {
		for _, other := range d.edges {
			if other.ID != e.ID && other.SourceID == e.SourceID {
				return pkgerrors.NewConflictError("waypoint " + e.SourceID + " already has an outgoing edge")
			}
		}
	}
	if d.isWaypoint(e.TargetID) {
		for _, other := range d.edges {
			if other.ID != e.ID && other.TargetID == e.TargetID {
				return pkgerrors.NewConflictError("waypoint " + e.TargetID + " already has an incoming edge")
			}
		}
	}
	return nil
}

func (d *Document) isWaypoint(nodeID string) bool {
	n, ok := d.nodes[nodeID]
	return ok && n.Kind == entities.NodeKindWaypoint
}

// RemoveEdge removes an edge by id
func (d *Document) RemoveEdge(id string) error {
	if _, ok := d.edges[id]; !ok {
		return pkgerrors.NewNotFoundError("edge " + id)
	}
	delete(d.edges, id)
	return nil
}

// --- Groups ---

// Group returns a deep copy of the group with the given id
func (d *Document) Group(id string) (*entities.Group, bool) {
	g, ok := d.groups[id]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// Groups returns copies of all groups, ordered by id
func (d *Document) Groups() []*entities.Group {
	out := make([]*entities.Group, 0, len(d.groups))
	for _, g := range d.groups {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InsertGroup inserts a group snapshot, replacing any group with the same id
func (d *Document) InsertGroup(g *entities.Group) error {
	if g == nil {
		return pkgerrors.NewValidationError("group snapshot is nil")
	}
	if err := g.Validate(); err != nil {
		return err
	}
	d.groups[g.ID] = g.Clone()
	return nil
}

// RemoveGroup removes a group; member nodes survive ungrouped
func (d *Document) RemoveGroup(id string) error {
	if _, ok := d.groups[id]; !ok {
		return pkgerrors.NewNotFoundError("group " + id)
	}
	delete(d.groups, id)
	return nil
}

// SetGroupName renames a group
func (d *Document) SetGroupName(id, name string) error {
	g, ok := d.groups[id]
	if !ok {
		return pkgerrors.NewNotFoundError("group " + id)
	}
	g.Name = name
	return nil
}

// SetGroupColor recolors a group
func (d *Document) SetGroupColor(id, color string) error {
	g, ok := d.groups[id]
	if !ok {
		return pkgerrors.NewNotFoundError("group " + id)
	}
	g.Color = color
	return nil
}

// SetGroupPosition moves a group's origin without changing its size
func (d *Document) SetGroupPosition(id string, pos valueobjects.Position) error {
	g, ok := d.groups[id]
	if !ok {
		return pkgerrors.NewNotFoundError("group " + id)
	}
	g.Rect.X = pos.X
	g.Rect.Y = pos.Y
	return nil
}

// SetGroupRect repositions/resizes a group
func (d *Document) SetGroupRect(id string, rect valueobjects.Rect) error {
	g, ok := d.groups[id]
	if !ok {
		return pkgerrors.NewNotFoundError("group " + id)
	}
	g.Rect = rect
	return nil
}

// SetGroupLocked sets the group lock flag
func (d *Document) SetGroupLocked(id string, locked bool) error {
	g, ok := d.groups[id]
	if !ok {
		return pkgerrors.NewNotFoundError("group " + id)
	}
	g.Locked = locked
	return nil
}

// AddGroupMember records node membership in a group, removing the node
// from any group that previously held it.
func (d *Document) AddGroupMember(groupID, nodeID string) error {
	g, ok := d.groups[groupID]
	if !ok {
		return pkgerrors.NewNotFoundError("group " + groupID)
	}
	for _, other := range d.groups {
		if other.ID != groupID {
			other.RemoveMember(nodeID)
		}
	}
	g.AddMember(nodeID)
	return nil
}

// RemoveGroupMember removes node membership from a group
func (d *Document) RemoveGroupMember(groupID, nodeID string) error {
	g, ok := d.groups[groupID]
	if !ok {
		return pkgerrors.NewNotFoundError("group " + groupID)
	}
	g.RemoveMember(nodeID)
	return nil
}

// GroupOf returns the id of the group holding nodeID, if any
func (d *Document) GroupOf(nodeID string) (string, bool) {
	ids := make([]string, 0, len(d.groups))
	for id := range d.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if d.groups[id].HasMember(nodeID) {
			return id, true
		}
	}
	return "", false
}

// --- Snippets ---

// InsertSnippet inserts a snippet into a node's ordered list at index
// (-1 or past-end appends). A snippet id already present in the node is
// replaced in place.
func (d *Document) InsertSnippet(nodeID string, index int, s entities.Snippet) error {
	n, ok := d.nodes[nodeID]
	if !ok {
		return pkgerrors.NewNotFoundError("node " + nodeID)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if i := n.SnippetIndex(s.ID); i >= 0 {
		n.Snippets[i] = s
		return nil
	}
	if index < 0 || index > len(n.Snippets) {
		index = len(n.Snippets)
	}
	n.Snippets = append(n.Snippets, entities.Snippet{})
	copy(n.Snippets[index+1:], n.Snippets[index:])
	n.Snippets[index] = s
	return nil
}

// RemoveSnippet removes a snippet from a node by snippet id
func (d *Document) RemoveSnippet(nodeID, snippetID string) error {
	n, ok := d.nodes[nodeID]
	if !ok {
		return pkgerrors.NewNotFoundError("node " + nodeID)
	}
	i := n.SnippetIndex(snippetID)
	if i < 0 {
		return pkgerrors.NewNotFoundError("snippet " + snippetID)
	}
	n.Snippets = append(n.Snippets[:i], n.Snippets[i+1:]...)
	return nil
}

// MoveSnippet reorders a snippet within a node's list
func (d *Document) MoveSnippet(nodeID string, from, to int) error {
	n, ok := d.nodes[nodeID]
	if !ok {
		return pkgerrors.NewNotFoundError("node " + nodeID)
	}
	return moveIndex(n.Snippets, from, to)
}

// SetSnippetField sets the content or source label of a snippet
func (d *Document) SetSnippetField(nodeID, snippetID, field, value string) error {
	n, ok := d.nodes[nodeID]
	if !ok {
		return pkgerrors.NewNotFoundError("node " + nodeID)
	}
	i := n.SnippetIndex(snippetID)
	if i < 0 {
		return pkgerrors.NewNotFoundError("snippet " + snippetID)
	}
	switch field {
	case FieldContent:
		n.Snippets[i].Content = value
	case FieldSourceLabel:
		n.Snippets[i].SourceLabel = value
	default:
		return pkgerrors.NewValidationError("unknown snippet field '" + field + "'")
	}
	return nil
}

// --- Tags ---

// Tags returns a copy of the ordered global tag list
func (d *Document) Tags() []entities.Tag {
	out := make([]entities.Tag, len(d.tags))
	copy(out, d.tags)
	return out
}

// TagIndex returns the position of a tag by name, or -1
func (d *Document) TagIndex(name string) int {
	for i := range d.tags {
		if d.tags[i].Name == name {
			return i
		}
	}
	return -1
}

// Tag returns the tag with the given name
func (d *Document) Tag(name string) (entities.Tag, bool) {
	if i := d.TagIndex(name); i >= 0 {
		return d.tags[i], true
	}
	return entities.Tag{}, false
}

// InsertTag inserts a tag at index (-1 or past-end appends); a tag with
// the same name is updated in place.
func (d *Document) InsertTag(index int, t entities.Tag) error {
	if t.Name == "" {
		return pkgerrors.NewValidationError("tag name cannot be empty")
	}
	if i := d.TagIndex(t.Name); i >= 0 {
		d.tags[i] = t
		return nil
	}
	if index < 0 || index > len(d.tags) {
		index = len(d.tags)
	}
	d.tags = append(d.tags, entities.Tag{})
	copy(d.tags[index+1:], d.tags[index:])
	d.tags[index] = t
	return nil
}

// RemoveTag removes a tag from the global list by name
func (d *Document) RemoveTag(name string) error {
	i := d.TagIndex(name)
	if i < 0 {
		return pkgerrors.NewNotFoundError("tag " + name)
	}
	d.tags = append(d.tags[:i], d.tags[i+1:]...)
	return nil
}

// RenameTag renames a tag, propagating the new name to every node that
// carries it.
func (d *Document) RenameTag(oldName, newName string) error {
	i := d.TagIndex(oldName)
	if i < 0 {
		return pkgerrors.NewNotFoundError("tag " + oldName)
	}
	if newName == "" {
		return pkgerrors.NewValidationError("tag name cannot be empty")
	}
	if j := d.TagIndex(newName); j >= 0 && j != i {
		return pkgerrors.NewConflictError("tag " + newName + " already exists")
	}
	d.tags[i].Name = newName
	for _, n := range d.nodes {
		for k, t := range n.Tags {
			if t == oldName {
				n.Tags[k] = newName
			}
		}
	}
	return nil
}

// SetTagColor sets the color of a tag
func (d *Document) SetTagColor(name, color string) error {
	i := d.TagIndex(name)
	if i < 0 {
		return pkgerrors.NewNotFoundError("tag " + name)
	}
	d.tags[i].Color = color
	return nil
}

// MoveTag reorders the global tag list
func (d *Document) MoveTag(from, to int) error {
	return moveIndex(d.tags, from, to)
}

// --- Todos ---

// Todos returns a copy of the ordered todo list
func (d *Document) Todos() []entities.Todo {
	out := make([]entities.Todo, len(d.todos))
	copy(out, d.todos)
	return out
}

// TodoAt returns the todo at the given index
func (d *Document) TodoAt(index int) (entities.Todo, bool) {
	if index < 0 || index >= len(d.todos) {
		return entities.Todo{}, false
	}
	return d.todos[index], true
}

// InsertTodo inserts a todo at index (-1 or past-end appends)
func (d *Document) InsertTodo(index int, t entities.Todo) error {
	if index < 0 || index > len(d.todos) {
		index = len(d.todos)
	}
	d.todos = append(d.todos, entities.Todo{})
	copy(d.todos[index+1:], d.todos[index:])
	d.todos[index] = t
	return nil
}

// RemoveTodoAt removes the todo at the given index
func (d *Document) RemoveTodoAt(index int) error {
	if index < 0 || index >= len(d.todos) {
		return pkgerrors.NewNotFoundError("todo")
	}
	d.todos = append(d.todos[:index], d.todos[index+1:]...)
	return nil
}

// SetTodoText updates the text of the todo at index
func (d *Document) SetTodoText(index int, text string) error {
	if index < 0 || index >= len(d.todos) {
		return pkgerrors.NewNotFoundError("todo")
	}
	d.todos[index].Text = text
	return nil
}

// SetTodoDone updates the done flag of the todo at index
func (d *Document) SetTodoDone(index int, done bool) error {
	if index < 0 || index >= len(d.todos) {
		return pkgerrors.NewNotFoundError("todo")
	}
	d.todos[index].Done = done
	return nil
}

// MoveTodo reorders the todo list
func (d *Document) MoveTodo(from, to int) error {
	return moveIndex(d.todos, from, to)
}

// --- Project singletons ---

// Description returns the project description
func (d *Document) Description() string {
	return d.description
}

// SetDescription replaces the project description
func (d *Document) SetDescription(text string) {
	d.description = text
}

// Palette returns a copy of the color palette
func (d *Document) Palette() entities.Palette {
	return d.palette.Clone()
}

// SetModuleColor sets the palette color for a module type
func (d *Document) SetModuleColor(moduleType, color string) {
	if d.palette.ModuleColors == nil {
		d.palette.ModuleColors = make(map[string]string)
	}
	d.palette.ModuleColors[moduleType] = color
}

// SetEdgeColors sets the global pipeline and reference edge colors
func (d *Document) SetEdgeColors(pipeline, reference string) {
	d.palette.PipelineEdgeColor = pipeline
	d.palette.ReferenceEdgeColor = reference
}

// moveIndex shifts the element at from to position to within s
func moveIndex[T any](s []T, from, to int) error {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return pkgerrors.NewValidationError("move index out of range")
	}
	if from == to {
		return nil
	}
	elem := s[from]
	if from < to {
		copy(s[from:], s[from+1:to+1])
	} else {
		copy(s[to+1:], s[to:from])
	}
	s[to] = elem
	return nil
}
