package aggregates

import (
	"researchflow-backend/domain/core/entities"
)

// ProjectSnapshot is the full serializable state of a document,
// persisted to project_data.json independent of the edit history.
type ProjectSnapshot struct {
	Description string           `json:"description,omitempty"`
	Tags        []entities.Tag   `json:"global_tags,omitempty"`
	Todos       []entities.Todo  `json:"todos,omitempty"`
	Nodes       []entities.Node  `json:"nodes"`
	Edges       []entities.Edge  `json:"edges"`
	Groups      []entities.Group `json:"groups,omitempty"`
	Palette     entities.Palette `json:"palette"`
}

// Snapshot captures the complete document state with deterministic
// ordering (nodes, edges and groups sorted by id).
func (d *Document) Snapshot() ProjectSnapshot {
	snap := ProjectSnapshot{
		Description: d.description,
		Tags:        d.Tags(),
		Todos:       d.Todos(),
		Palette:     d.palette.Clone(),
	}
	for _, n := range d.Nodes() {
		snap.Nodes = append(snap.Nodes, *n)
	}
	for _, e := range d.Edges() {
		snap.Edges = append(snap.Edges, *e)
	}
	for _, g := range d.Groups() {
		snap.Groups = append(snap.Groups, *g)
	}
	return snap
}

// Restore replaces the entire document state with the snapshot.
// Invalid nodes, edges or groups are dropped rather than aborting the
// load; edges are restored after nodes so waypoint degree checks see
// their endpoints.
func (d *Document) Restore(snap ProjectSnapshot) {
	d.nodes = make(map[string]*entities.Node, len(snap.Nodes))
	d.edges = make(map[string]*entities.Edge, len(snap.Edges))
	d.groups = make(map[string]*entities.Group, len(snap.Groups))
	d.tags = append([]entities.Tag(nil), snap.Tags...)
	d.todos = append([]entities.Todo(nil), snap.Todos...)
	d.description = snap.Description
	d.palette = snap.Palette.Clone()
	if d.palette.PipelineEdgeColor == "" {
		d.palette.PipelineEdgeColor = entities.DefaultPipelineEdgeColor
	}
	if d.palette.ReferenceEdgeColor == "" {
		d.palette.ReferenceEdgeColor = entities.DefaultReferenceEdgeColor
	}
	for i := range snap.Nodes {
		n := snap.Nodes[i]
		_ = d.InsertNode(&n)
	}
	for i := range snap.Edges {
		e := snap.Edges[i]
		_ = d.InsertEdge(&e)
	}
	for i := range snap.Groups {
		g := snap.Groups[i]
		_ = d.InsertGroup(&g)
	}
}

// Clear resets the document to an empty state
func (d *Document) Clear() {
	d.Restore(ProjectSnapshot{Palette: entities.NewPalette()})
}
