package commands

import (
	"errors"

	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
)

// AddEdge connects two nodes. Connecting a reference node to a process
// node clones the reference's snippets onto the target as a side effect
// that happens before the command exists; the command records only the
// clone ids at construction. The first undo snapshots the clones' full
// content from the document, so a later redo recreates identical
// snippets instead of re-deriving them from a possibly-edited source.
type AddEdge struct {
	Edge           *entities.Edge     `json:"edge"`
	TargetNodeID   string             `json:"target_node_id,omitempty"`
	ClonedIDs      []string           `json:"cloned_snippet_ids,omitempty"`
	ClonedSnippets []entities.Snippet `json:"cloned_snippet_data,omitempty"`

	// firstApply suppresses clone restoration on the initial execute,
	// when the clones are already on the target. Never serialized:
	// commands reloaded from history restore clones on apply.
	firstApply bool
}

// NewAddEdge creates a connect command; cloneIDs lists the snippets the
// connect already copied onto the target node, if any.
func NewAddEdge(edge *entities.Edge, targetNodeID string, cloneIDs []string) *AddEdge {
	return &AddEdge{
		Edge:         edge,
		TargetNodeID: targetNodeID,
		ClonedIDs:    cloneIDs,
		firstApply:   true,
	}
}

func (c *AddEdge) Kind() string { return KindAddEdge }

func (c *AddEdge) validate() error {
	if c.Edge == nil {
		return errors.New("missing edge snapshot")
	}
	return nil
}

func (c *AddEdge) Apply(m Mutator) error {
	if err := m.InsertEntity(aggregates.KindEdge, aggregates.Snapshot{Edge: c.Edge}); err != nil {
		return err
	}
	if c.firstApply {
		c.firstApply = false
		return nil
	}
	for i := range c.ClonedSnippets {
		s := c.ClonedSnippets[i]
		if err := m.InsertEntity(aggregates.KindSnippet, aggregates.Snapshot{
			Snippet: &s,
			Owner:   c.TargetNodeID,
			Index:   -1,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *AddEdge) Revert(m Mutator) error {
	// Capture clone content before it disappears; it did not exist when
	// the command was constructed.
	if len(c.ClonedIDs) > 0 && len(c.ClonedSnippets) == 0 {
		for _, id := range c.ClonedIDs {
			if s, ok := m.LookupSnippet(c.TargetNodeID, id); ok {
				c.ClonedSnippets = append(c.ClonedSnippets, s)
			}
		}
	}
	if err := m.RemoveEntity(aggregates.KindEdge, aggregates.EntityRef{ID: c.Edge.ID}); err != nil {
		return err
	}
	for _, id := range c.ClonedIDs {
		if err := m.RemoveEntity(aggregates.KindSnippet, aggregates.EntityRef{ID: id, Owner: c.TargetNodeID}); err != nil {
			return err
		}
	}
	return nil
}

// RemoveEdge disconnects two nodes, storing the full edge snapshot
type RemoveEdge struct {
	Edge *entities.Edge `json:"edge"`
}

func (c *RemoveEdge) Kind() string { return KindRemoveEdge }

func (c *RemoveEdge) validate() error {
	if c.Edge == nil {
		return errors.New("missing edge snapshot")
	}
	return nil
}

func (c *RemoveEdge) Apply(m Mutator) error {
	return m.RemoveEntity(aggregates.KindEdge, aggregates.EntityRef{ID: c.Edge.ID})
}

func (c *RemoveEdge) Revert(m Mutator) error {
	return m.InsertEntity(aggregates.KindEdge, aggregates.Snapshot{Edge: c.Edge})
}
