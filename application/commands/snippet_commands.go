package commands

import (
	"errors"

	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
)

// SnippetAdd appends a snippet to a node from a full snapshot
type SnippetAdd struct {
	NodeID  string            `json:"node_id"`
	Snippet *entities.Snippet `json:"snippet"`
}

func (c *SnippetAdd) Kind() string { return KindSnippetAdd }

func (c *SnippetAdd) validate() error {
	if c.Snippet == nil {
		return errors.New("missing snippet snapshot")
	}
	return nil
}

func (c *SnippetAdd) Apply(m Mutator) error {
	return m.InsertEntity(aggregates.KindSnippet, aggregates.Snapshot{
		Snippet: c.Snippet,
		Owner:   c.NodeID,
		Index:   -1,
	})
}

func (c *SnippetAdd) Revert(m Mutator) error {
	return m.RemoveEntity(aggregates.KindSnippet, aggregates.EntityRef{ID: c.Snippet.ID, Owner: c.NodeID})
}

// SnippetRemove deletes a snippet, recording its list position so undo
// reinserts it where it was.
type SnippetRemove struct {
	NodeID  string            `json:"node_id"`
	Snippet *entities.Snippet `json:"snippet"`
	Index   int               `json:"snippet_index"`
}

func (c *SnippetRemove) Kind() string { return KindSnippetRemove }

func (c *SnippetRemove) validate() error {
	if c.Snippet == nil {
		return errors.New("missing snippet snapshot")
	}
	return nil
}

func (c *SnippetRemove) Apply(m Mutator) error {
	return m.RemoveEntity(aggregates.KindSnippet, aggregates.EntityRef{ID: c.Snippet.ID, Owner: c.NodeID})
}

func (c *SnippetRemove) Revert(m Mutator) error {
	return m.InsertEntity(aggregates.KindSnippet, aggregates.Snapshot{
		Snippet: c.Snippet,
		Owner:   c.NodeID,
		Index:   c.Index,
	})
}

// SnippetEdit rewrites a snippet's content or source label
type SnippetEdit struct {
	NodeID    string `json:"node_id"`
	SnippetID string `json:"snippet_id"`
	Field     string `json:"field"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
}

func (c *SnippetEdit) Kind() string { return KindSnippetEdit }

func (c *SnippetEdit) Apply(m Mutator) error {
	return m.SetField(aggregates.KindSnippet, aggregates.EntityRef{ID: c.SnippetID, Owner: c.NodeID}, c.Field, c.NewValue)
}

func (c *SnippetEdit) Revert(m Mutator) error {
	return m.SetField(aggregates.KindSnippet, aggregates.EntityRef{ID: c.SnippetID, Owner: c.NodeID}, c.Field, c.OldValue)
}

// SnippetMove reorders a snippet within its node; revert swaps indices
type SnippetMove struct {
	NodeID    string `json:"node_id"`
	SnippetID string `json:"snippet_id"`
	From      int    `json:"from_index"`
	To        int    `json:"to_index"`
}

func (c *SnippetMove) Kind() string { return KindSnippetMove }

func (c *SnippetMove) Apply(m Mutator) error {
	return m.Reorder(aggregates.KindSnippet, c.NodeID, c.From, c.To)
}

func (c *SnippetMove) Revert(m Mutator) error {
	return m.Reorder(aggregates.KindSnippet, c.NodeID, c.To, c.From)
}
