package commands

import (
	"errors"

	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
)

// AddGroup creates a group from a full snapshot
type AddGroup struct {
	Group *entities.Group `json:"group"`
}

func (c *AddGroup) Kind() string { return KindAddGroup }

func (c *AddGroup) validate() error {
	if c.Group == nil {
		return errors.New("missing group snapshot")
	}
	return nil
}

func (c *AddGroup) Apply(m Mutator) error {
	return m.InsertEntity(aggregates.KindGroup, aggregates.Snapshot{Group: c.Group})
}

func (c *AddGroup) Revert(m Mutator) error {
	return m.RemoveEntity(aggregates.KindGroup, aggregates.EntityRef{ID: c.Group.ID})
}

// RemoveGroup deletes a group from a full snapshot; member nodes
// survive ungrouped and revert restores the membership list intact.
type RemoveGroup struct {
	Group *entities.Group `json:"group"`
}

func (c *RemoveGroup) Kind() string { return KindRemoveGroup }

func (c *RemoveGroup) validate() error {
	if c.Group == nil {
		return errors.New("missing group snapshot")
	}
	return nil
}

func (c *RemoveGroup) Apply(m Mutator) error {
	return m.RemoveEntity(aggregates.KindGroup, aggregates.EntityRef{ID: c.Group.ID})
}

func (c *RemoveGroup) Revert(m Mutator) error {
	return m.InsertEntity(aggregates.KindGroup, aggregates.Snapshot{Group: c.Group})
}

// GroupMove drags a group together with its member nodes. Every
// member's pre-drag position is snapshotted at construction; redo
// re-derives member targets from the recorded delta. The drag already
// moved everything before the command exists, so the first apply of a
// live command is a no-op; reloaded commands always fully apply.
type GroupMove struct {
	GroupID         string                           `json:"group_id"`
	OldPos          valueobjects.Position            `json:"old_pos"`
	NewPos          valueobjects.Position            `json:"new_pos"`
	MemberPositions map[string]valueobjects.Position `json:"child_positions,omitempty"`

	pending bool
}

// NewGroupMove creates a group drag command whose first apply is a
// no-op. memberPositions maps member node ids to their pre-drag
// positions.
func NewGroupMove(groupID string, oldPos, newPos valueobjects.Position, memberPositions map[string]valueobjects.Position) *GroupMove {
	return &GroupMove{
		GroupID:         groupID,
		OldPos:          oldPos,
		NewPos:          newPos,
		MemberPositions: memberPositions,
		pending:         true,
	}
}

func (c *GroupMove) Kind() string { return KindGroupMove }

func (c *GroupMove) Apply(m Mutator) error {
	if c.pending {
		c.pending = false
		return nil
	}
	return c.moveTo(m, c.NewPos)
}

func (c *GroupMove) Revert(m Mutator) error {
	return c.moveTo(m, c.OldPos)
}

func (c *GroupMove) moveTo(m Mutator, target valueobjects.Position) error {
	if err := m.SetField(aggregates.KindGroup, aggregates.EntityRef{ID: c.GroupID}, aggregates.FieldPosition, target); err != nil {
		return err
	}
	dx, dy := target.Delta(c.OldPos)
	for nodeID, oldPos := range c.MemberPositions {
		pos := oldPos.Translate(dx, dy)
		if err := m.SetField(aggregates.KindNode, aggregates.EntityRef{ID: nodeID}, aggregates.FieldPosition, pos); err != nil {
			return err
		}
	}
	return nil
}

// NodeGroupChange re-parents a node between groups. Both the previous
// and the new group are recorded so undo restores the old membership.
type NodeGroupChange struct {
	NodeID     string `json:"node_id"`
	OldGroupID string `json:"old_group_id,omitempty"`
	NewGroupID string `json:"new_group_id,omitempty"`
}

func (c *NodeGroupChange) Kind() string { return KindNodeGroupChange }

func (c *NodeGroupChange) Apply(m Mutator) error {
	return c.reparent(m, c.OldGroupID, c.NewGroupID)
}

func (c *NodeGroupChange) Revert(m Mutator) error {
	return c.reparent(m, c.NewGroupID, c.OldGroupID)
}

func (c *NodeGroupChange) reparent(m Mutator, fromGroupID, toGroupID string) error {
	if fromGroupID != "" {
		if err := m.RemoveEntity(aggregates.KindMember, aggregates.EntityRef{Owner: fromGroupID, ID: c.NodeID}); err != nil {
			return err
		}
	}
	if toGroupID != "" {
		return m.InsertEntity(aggregates.KindMember, aggregates.Snapshot{Owner: toGroupID, Member: c.NodeID})
	}
	return nil
}

// GroupNameEdit renames a group
type GroupNameEdit struct {
	GroupID string `json:"group_id"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

func (c *GroupNameEdit) Kind() string { return KindGroupNameEdit }

func (c *GroupNameEdit) Apply(m Mutator) error {
	return m.SetField(aggregates.KindGroup, aggregates.EntityRef{ID: c.GroupID}, aggregates.FieldName, c.NewName)
}

func (c *GroupNameEdit) Revert(m Mutator) error {
	return m.SetField(aggregates.KindGroup, aggregates.EntityRef{ID: c.GroupID}, aggregates.FieldName, c.OldName)
}

// GroupSize repositions and resizes a group in one step
type GroupSize struct {
	GroupID string            `json:"group_id"`
	OldRect valueobjects.Rect `json:"old_rect"`
	NewRect valueobjects.Rect `json:"new_rect"`
}

func (c *GroupSize) Kind() string { return KindGroupSize }

func (c *GroupSize) Apply(m Mutator) error {
	return m.SetField(aggregates.KindGroup, aggregates.EntityRef{ID: c.GroupID}, aggregates.FieldRect, c.NewRect)
}

func (c *GroupSize) Revert(m Mutator) error {
	return m.SetField(aggregates.KindGroup, aggregates.EntityRef{ID: c.GroupID}, aggregates.FieldRect, c.OldRect)
}
