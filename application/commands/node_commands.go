package commands

import (
	"errors"

	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
)

// AddNode creates a node or waypoint from a full snapshot
type AddNode struct {
	Node *entities.Node `json:"node"`
}

func (c *AddNode) Kind() string { return KindAddNode }

func (c *AddNode) validate() error {
	if c.Node == nil {
		return errors.New("missing node snapshot")
	}
	return nil
}

func (c *AddNode) Apply(m Mutator) error {
	return m.InsertEntity(aggregates.KindNode, aggregates.Snapshot{Node: c.Node})
}

func (c *AddNode) Revert(m Mutator) error {
	return m.RemoveEntity(aggregates.KindNode, aggregates.EntityRef{ID: c.Node.ID})
}

// RemoveNode deletes a node. Its incident edges die with it, so the
// command captures their full snapshots at construction time; revert
// reinserts the node first, then the edges.
type RemoveNode struct {
	Node  *entities.Node  `json:"node"`
	Edges []entities.Edge `json:"connected_edges,omitempty"`
}

func (c *RemoveNode) Kind() string { return KindRemoveNode }

func (c *RemoveNode) validate() error {
	if c.Node == nil {
		return errors.New("missing node snapshot")
	}
	return nil
}

func (c *RemoveNode) Apply(m Mutator) error {
	return m.RemoveEntity(aggregates.KindNode, aggregates.EntityRef{ID: c.Node.ID})
}

func (c *RemoveNode) Revert(m Mutator) error {
	if err := m.InsertEntity(aggregates.KindNode, aggregates.Snapshot{Node: c.Node}); err != nil {
		return err
	}
	for i := range c.Edges {
		e := c.Edges[i]
		if err := m.InsertEntity(aggregates.KindEdge, aggregates.Snapshot{Edge: &e}); err != nil {
			return err
		}
	}
	return nil
}

// NodePosition moves a node or waypoint. The drag already moved the
// entity before the command exists, so a freshly constructed command
// suppresses its first apply; reloaded commands always fully apply.
type NodePosition struct {
	NodeID string                `json:"node_id"`
	OldPos valueobjects.Position `json:"old_pos"`
	NewPos valueobjects.Position `json:"new_pos"`

	pending bool
}

// NewNodePosition creates a move command whose first apply is a no-op
func NewNodePosition(nodeID string, oldPos, newPos valueobjects.Position) *NodePosition {
	return &NodePosition{NodeID: nodeID, OldPos: oldPos, NewPos: newPos, pending: true}
}

func (c *NodePosition) Kind() string { return KindNodePosition }

func (c *NodePosition) Apply(m Mutator) error {
	if c.pending {
		c.pending = false
		return nil
	}
	return m.SetField(aggregates.KindNode, aggregates.EntityRef{ID: c.NodeID}, aggregates.FieldPosition, c.NewPos)
}

func (c *NodePosition) Revert(m Mutator) error {
	return m.SetField(aggregates.KindNode, aggregates.EntityRef{ID: c.NodeID}, aggregates.FieldPosition, c.OldPos)
}

// NodeMetadataEdit sets one named metadata field on a node
type NodeMetadataEdit struct {
	NodeID   string `json:"node_id"`
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

func (c *NodeMetadataEdit) Kind() string { return KindNodeMetadataEdit }

func (c *NodeMetadataEdit) Apply(m Mutator) error {
	return m.SetField(aggregates.KindNode, aggregates.EntityRef{ID: c.NodeID}, c.Field, c.NewValue)
}

func (c *NodeMetadataEdit) Revert(m Mutator) error {
	return m.SetField(aggregates.KindNode, aggregates.EntityRef{ID: c.NodeID}, c.Field, c.OldValue)
}

// NodeTagToggle adds or removes one tag on one node. Node-scoped tag
// membership travels through the tag kind with Owner set to the node.
type NodeTagToggle struct {
	NodeID string `json:"node_id"`
	Tag    string `json:"tag_name"`
	Added  bool   `json:"was_added"`
}

func (c *NodeTagToggle) Kind() string { return KindNodeTagToggle }

func (c *NodeTagToggle) Apply(m Mutator) error {
	return c.toggle(m, c.Added)
}

func (c *NodeTagToggle) Revert(m Mutator) error {
	return c.toggle(m, !c.Added)
}

func (c *NodeTagToggle) toggle(m Mutator, add bool) error {
	if add {
		return m.InsertEntity(aggregates.KindTag, aggregates.Snapshot{
			Tag:   &entities.Tag{Name: c.Tag},
			Owner: c.NodeID,
		})
	}
	return m.RemoveEntity(aggregates.KindTag, aggregates.EntityRef{ID: c.Tag, Owner: c.NodeID})
}

// NodeFlagToggle flips a node's attention flag
type NodeFlagToggle struct {
	NodeID   string `json:"node_id"`
	NewState bool   `json:"new_state"`
}

func (c *NodeFlagToggle) Kind() string { return KindNodeFlagToggle }

func (c *NodeFlagToggle) Apply(m Mutator) error {
	return m.SetField(aggregates.KindNode, aggregates.EntityRef{ID: c.NodeID}, aggregates.FieldFlagged, c.NewState)
}

func (c *NodeFlagToggle) Revert(m Mutator) error {
	return m.SetField(aggregates.KindNode, aggregates.EntityRef{ID: c.NodeID}, aggregates.FieldFlagged, !c.NewState)
}

// NodeLockToggle flips the lock flag on a node or group
type NodeLockToggle struct {
	EntityID string `json:"node_id"`
	NewState bool   `json:"new_state"`
	IsGroup  bool   `json:"is_group,omitempty"`
}

func (c *NodeLockToggle) Kind() string { return KindNodeLockToggle }

func (c *NodeLockToggle) Apply(m Mutator) error {
	return m.SetField(c.targetKind(), aggregates.EntityRef{ID: c.EntityID}, aggregates.FieldLocked, c.NewState)
}

func (c *NodeLockToggle) Revert(m Mutator) error {
	return m.SetField(c.targetKind(), aggregates.EntityRef{ID: c.EntityID}, aggregates.FieldLocked, !c.NewState)
}

func (c *NodeLockToggle) targetKind() aggregates.EntityKind {
	if c.IsGroup {
		return aggregates.KindGroup
	}
	return aggregates.KindNode
}
