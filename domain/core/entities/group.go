package entities

import (
	"researchflow-backend/domain/core/valueobjects"
	pkgerrors "researchflow-backend/pkg/errors"
)

// Group is a named, colored region of the canvas holding member nodes.
// Membership is recorded on the group; a node belongs to at most one
// group at a time.
type Group struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Color   string            `json:"color,omitempty"`
	Rect    valueobjects.Rect `json:"rect"`
	NodeIDs []string          `json:"node_ids,omitempty"`
	Locked  bool              `json:"is_locked,omitempty"`
}

// NewGroup creates a group with a fresh id
func NewGroup(name string, rect valueobjects.Rect) *Group {
	return &Group{ID: valueobjects.NewID(), Name: name, Rect: rect}
}

// Validate checks structural validity of a group snapshot
func (g *Group) Validate() error {
	if err := valueobjects.ValidateID(g.ID); err != nil {
		return pkgerrors.NewValidationError("group: " + err.Error())
	}
	return nil
}

// Clone returns a deep copy of the group
func (g *Group) Clone() *Group {
	cp := *g
	cp.NodeIDs = append([]string(nil), g.NodeIDs...)
	return &cp
}

// HasMember reports whether the node id is a member of the group
func (g *Group) HasMember(nodeID string) bool {
	for _, id := range g.NodeIDs {
		if id == nodeID {
			return true
		}
	}
	return false
}

// AddMember records the node as a member if not already present
func (g *Group) AddMember(nodeID string) {
	if !g.HasMember(nodeID) {
		g.NodeIDs = append(g.NodeIDs, nodeID)
	}
}

// RemoveMember removes the node from the membership list
func (g *Group) RemoveMember(nodeID string) {
	for i, id := range g.NodeIDs {
		if id == nodeID {
			g.NodeIDs = append(g.NodeIDs[:i], g.NodeIDs[i+1:]...)
			return
		}
	}
}
