package entities

import (
	"researchflow-backend/domain/core/valueobjects"
	pkgerrors "researchflow-backend/pkg/errors"
)

// Edge is a directed connection between two nodes or waypoints. A
// removed edge is fully described by its snapshot (id plus both
// endpoint ids) so deletion commands can reconstruct it on undo.
type Edge struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// NewEdge creates an edge between the given endpoints with a fresh id
func NewEdge(sourceID, targetID string) *Edge {
	return &Edge{ID: valueobjects.NewID(), SourceID: sourceID, TargetID: targetID}
}

// Validate checks structural validity of an edge snapshot
func (e *Edge) Validate() error {
	if err := valueobjects.ValidateID(e.ID); err != nil {
		return pkgerrors.NewValidationError("edge: " + err.Error())
	}
	if e.SourceID == "" || e.TargetID == "" {
		return pkgerrors.NewValidationError("edge: both endpoints are required")
	}
	if e.SourceID == e.TargetID {
		return pkgerrors.NewValidationError("edge: cannot connect an entity to itself")
	}
	return nil
}

// Touches reports whether the edge is incident to the given node id
func (e *Edge) Touches(nodeID string) bool {
	return e.SourceID == nodeID || e.TargetID == nodeID
}

// Clone returns a copy of the edge
func (e *Edge) Clone() *Edge {
	cp := *e
	return &cp
}
